package receipt

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		baseDir string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		baseDir = filepath.Join(tmpDir, RefinedDirName)
		var err error
		storage, err = NewLocalStorage(baseDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should create the storage directory", func() {
		Expect(baseDir).To(BeADirectory())
	})

	Describe("Copy", func() {
		var (
			srcPath   string
			filename  string
			savedPath string
			modTime   time.Time
			err       error
		)

		BeforeEach(func() {
			srcPath = filepath.Join(tmpDir, "ride.pdf")
			filename = "20240105_150.00.pdf"
			modTime = time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC)
			Expect(os.WriteFile(srcPath, []byte("original content"), 0644)).To(Succeed())
			Expect(os.Chtimes(srcPath, modTime, modTime)).To(Succeed())
		})

		JustBeforeEach(func() {
			savedPath, err = storage.Copy(srcPath, filename)
		})

		When("copying succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the full destination path", func() {
				Expect(savedPath).To(Equal(filepath.Join(baseDir, filename)))
			})

			It("should copy the content", func() {
				data, readErr := os.ReadFile(savedPath)
				Expect(readErr).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("original content"))
			})

			It("should keep the source file", func() {
				Expect(srcPath).To(BeAnExistingFile())
			})

			It("should preserve the modification time", func() {
				info, statErr := os.Stat(savedPath)
				Expect(statErr).NotTo(HaveOccurred())
				Expect(info.ModTime().Equal(modTime)).To(BeTrue())
			})
		})

		When("the destination already exists", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(filepath.Join(baseDir, filename), []byte("earlier copy"), 0644)).To(Succeed())
			})

			It("returns the error without overwriting", func() {
				Expect(err).To(HaveOccurred())
				data, _ := os.ReadFile(filepath.Join(baseDir, filename))
				Expect(string(data)).To(Equal("earlier copy"))
			})
		})

		When("the source does not exist", func() {
			BeforeEach(func() {
				srcPath = filepath.Join(tmpDir, "missing.pdf")
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("opening source file"))
			})
		})
	})

	Describe("Exists", func() {
		It("reports stored files", func() {
			Expect(os.WriteFile(filepath.Join(baseDir, "a.pdf"), []byte("x"), 0644)).To(Succeed())
			exists, err := storage.Exists("a.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("reports missing files", func() {
			exists, err := storage.Exists("b.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("Remove", func() {
		It("deletes a stored file", func() {
			Expect(os.WriteFile(filepath.Join(baseDir, "a.pdf"), []byte("x"), 0644)).To(Succeed())
			Expect(storage.Remove("a.pdf")).To(Succeed())
			Expect(filepath.Join(baseDir, "a.pdf")).NotTo(BeAnExistingFile())
		})

		It("ignores missing files", func() {
			Expect(storage.Remove("b.pdf")).To(Succeed())
		})
	})
})

package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"github.com/zombor/rapido-bills/internal/scanning"
)

var _ = Describe("Integration", func() {
	var (
		tempDir string
		folder  string
		db      *BoltDB
		service *Service
		err     error
	)

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
		folder = filepath.Join(tempDir, "bills")
		Expect(os.Mkdir(folder, 0755)).To(Succeed())

		db, err = NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		service = NewService(db, newMockScanner(), NewXLSXExporter())

		writeDocument(folder, "ride-1.pdf", invoiceText("Jan 5th 2024, 9:41 PM", "150"))
		writeDocument(folder, "ride-2.pdf", "%CORRUPT")
		writeDocument(folder, "ride-3.pdf", invoiceText("Jan 5th 2024, 9:41 PM", "150"))
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	It("should process a folder end to end", func() {
		batch, receipts, err := service.ProcessFolder(folder)
		Expect(err).NotTo(HaveOccurred())

		By("skipping the unreadable document")
		Expect(receipts).To(HaveLen(2))
		Expect(batch.Failures).To(HaveLen(1))
		Expect(batch.Failures[0].File).To(Equal("ride-2.pdf"))

		By("copying the documents under their refined names")
		refined := filepath.Join(folder, RefinedDirName)
		Expect(filepath.Join(refined, "20240105_150.00.pdf")).To(BeAnExistingFile())
		Expect(filepath.Join(refined, "20240105_150.00_1.pdf")).To(BeAnExistingFile())
		Expect(filepath.Join(folder, "ride-1.pdf")).To(BeAnExistingFile())

		By("writing the summary with links to the copies")
		Expect(batch.SummaryPath).To(BeAnExistingFile())
		workbook, err := excelize.OpenFile(batch.SummaryPath)
		Expect(err).NotTo(HaveOccurred())
		defer workbook.Close()
		_, link, err := workbook.GetCellHyperLink(summarySheet, "A3")
		Expect(err).NotTo(HaveOccurred())
		Expect(link).To(Equal(filepath.Join(refined, "20240105_150.00_1.pdf")))

		By("persisting the batch and receipts")
		saved, savedReceipts, err := service.GetBatchWithReceipts(batch.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.TotalFare).To(Equal("300.00"))
		Expect(savedReceipts).To(HaveLen(2))
		Expect(savedReceipts[0].VehiclePlate).To(Equal("KA05MN4321"))
		Expect(savedReceipts[0].Pickup).To(Equal("Koramangala, Bengaluru, India"))
		Expect(savedReceipts[0].Drop).To(Equal("Indiranagar, Bengaluru, India"))
	})

	It("should keep numbering across runs", func() {
		_, _, err := service.ProcessFolder(folder)
		Expect(err).NotTo(HaveOccurred())

		_, receipts, err := service.ProcessFolder(folder)
		Expect(err).NotTo(HaveOccurred())
		Expect(receipts[0].SourceName).To(Equal("20240105_150.00_2.pdf"))
		Expect(receipts[1].SourceName).To(Equal("20240105_150.00_3.pdf"))
	})

	It("should report a folder without valid receipts", func() {
		Expect(os.Remove(filepath.Join(folder, "ride-1.pdf"))).To(Succeed())
		Expect(os.Remove(filepath.Join(folder, "ride-3.pdf"))).To(Succeed())

		_, _, err := service.ProcessFolder(folder)
		Expect(err).To(MatchError(ErrNoReceipts))
		Expect(filepath.Join(folder, RefinedDirName, summaryFilename)).NotTo(BeAnExistingFile())
	})
})

var _ = Describe("Integration with MuPDF", func() {
	var (
		tempDir string
		folder  string
		db      *BoltDB
		service *Service
	)

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()
		folder = filepath.Join(tempDir, "bills")
		Expect(os.Mkdir(folder, 0755)).To(Succeed())

		var err error
		db, err = NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		invoice, err := os.ReadFile(filepath.Join("..", "scanning", "testdata", "invoice.pdf"))
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(filepath.Join(folder, "invoice.pdf"), invoice, 0644)).To(Succeed())

		service = NewService(db, scanning.NewFitz(), NewXLSXExporter())
	})

	It("should extract, rename and summarize a real PDF", func() {
		batch, receipts, err := service.ProcessFolder(folder)
		Expect(err).NotTo(HaveOccurred())

		Expect(batch.Failures).To(BeEmpty())
		Expect(receipts).To(HaveLen(1))
		r := receipts[0]
		Expect(r.RideID).To(Equal("RD1700000000001"))
		Expect(r.VehiclePlate).To(Equal("KA05MN4321"))
		Expect(r.Pickup).To(Equal("Koramangala, Bengaluru, India"))
		Expect(r.Drop).To(Equal("Indiranagar, Bengaluru, India"))
		Expect(r.SourceName).To(Equal("20240105_1299.00.pdf"))
		Expect(r.DestinationPath).To(BeAnExistingFile())
		Expect(batch.TotalFare).To(Equal("1299.00"))

		workbook, err := excelize.OpenFile(batch.SummaryPath)
		Expect(err).NotTo(HaveOccurred())
		defer workbook.Close()
		fare, err := workbook.GetCellValue(summarySheet, "G2")
		Expect(err).NotTo(HaveOccurred())
		Expect(fare).To(Equal("1299"))
	})
})

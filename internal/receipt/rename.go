package receipt

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const refinedExt = ".pdf"

// refinedFilename builds "<YYYYMMDD>_<fare>.pdf", with "_<n>" before the
// extension for n > 0
func refinedFilename(rideTime time.Time, fare float64, n int) string {
	name := rideTime.Format("20060102") + "_" + decimal.NewFromFloat(fare).StringFixed(2)
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	return name + refinedExt
}

// copyRefined stores a renamed copy of the receipt's document, points the
// receipt at it and returns the stored name. Receipts without a ride time or
// fare are left where they are and "" is returned.
func copyRefined(store Storage, r *Receipt) (string, error) {
	if r.RideTime == nil || r.Fare <= 0 {
		return "", nil
	}

	var filename string
	for n := 0; ; n++ {
		filename = refinedFilename(*r.RideTime, r.Fare, n)
		exists, err := store.Exists(filename)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
	}

	path, err := store.Copy(r.DestinationPath, filename)
	if err != nil {
		return "", err
	}

	r.DestinationPath = path
	r.SourceName = filename
	return filename, nil
}

// totalFare sums fares without float drift
func totalFare(receipts []*Receipt) string {
	total := decimal.Zero
	for _, r := range receipts {
		total = total.Add(decimal.NewFromFloat(r.Fare))
	}
	return total.StringFixed(2)
}

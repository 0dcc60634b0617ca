package receipt

import (
	"time"

	"github.com/zombor/rapido-bills/internal/scanning"
)

// Receipt represents one extracted ride receipt
type Receipt struct {
	ID              string     `json:"id"`
	BatchID         string     `json:"batch_id"`
	SourceName      string     `json:"source_name"` // refined file name once the copy is made
	RideTime        *time.Time `json:"ride_time,omitempty"`
	RideID          string     `json:"ride_id"`
	VehiclePlate    string     `json:"vehicle_plate"`
	Pickup          string     `json:"pickup"`
	Drop            string     `json:"drop"`
	Fare            float64    `json:"fare"`
	DestinationPath string     `json:"destination_path"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Failure records a document that could not be processed
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Batch represents one processed folder of receipts
type Batch struct {
	ID            string    `json:"id"`
	Folder        string    `json:"folder"`
	RefinedFolder string    `json:"refined_folder"`
	SummaryPath   string    `json:"summary_path"`
	ReceiptIDs    []string  `json:"receipt_ids"`
	Failures      []Failure `json:"failures"`
	TotalFare     string    `json:"total_fare"` // decimal string, 2 places
	CreatedAt     time.Time `json:"created_at"`
}

// newReceipt builds a receipt for a document that has not been copied yet
func newReceipt(id, sourceName, path string, data *scanning.ReceiptData) *Receipt {
	return &Receipt{
		ID:              id,
		SourceName:      sourceName,
		RideTime:        data.RideTime,
		RideID:          data.RideID,
		VehiclePlate:    data.VehiclePlate,
		Pickup:          data.Pickup,
		Drop:            data.Drop,
		Fare:            data.Fare,
		DestinationPath: path,
	}
}

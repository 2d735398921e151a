package shipping

import "fashion-shop/internal/model"

// Parcel is one order line's contribution to the shipped package.
type Parcel struct {
	Weight   int
	Length   int
	Width    int
	Height   int
	Quantity int
}

// PackageFor stacks the lines into one box: weights and heights add up,
// length and width are the largest of any item. Every dimension is at
// least 1 since the carrier rejects zeros.
func PackageFor(parcels []Parcel) model.Package {
	var pkg model.Package
	for _, p := range parcels {
		pkg.Weight += p.Weight * p.Quantity
		pkg.Height += p.Height * p.Quantity
		pkg.Length = max(pkg.Length, p.Length)
		pkg.Width = max(pkg.Width, p.Width)
	}
	pkg.Weight = max(pkg.Weight, 1)
	pkg.Length = max(pkg.Length, 1)
	pkg.Width = max(pkg.Width, 1)
	pkg.Height = max(pkg.Height, 1)
	return pkg
}

var statusDescriptions = map[string]string{
	"ready_to_pick":            "Order has been created",
	"picking":                  "Courier is picking up the parcel",
	"cancel":                   "Shipment cancelled",
	"money_collect_picking":    "Collecting payment from the sender",
	"picked":                   "Courier has picked up the parcel",
	"storing":                  "Parcel is in the warehouse",
	"transporting":             "Parcel is in transit",
	"sorting":                  "Parcel is being sorted",
	"delivering":               "Courier is delivering to the receiver",
	"money_collect_delivering": "Collecting payment from the receiver",
	"delivered":                "Parcel delivered successfully",
	"delivery_fail":            "Delivery attempt failed",
	"waiting_to_return":        "Waiting to return to the sender",
	"return":                   "Returning to the sender",
	"return_transporting":      "Return parcel is in transit",
	"return_sorting":           "Return parcel is being sorted",
	"returning":                "Courier is returning the parcel",
	"return_fail":              "Return attempt failed",
	"returned":                 "Parcel returned to the sender",
	"exception":                "Shipment is outside the normal flow",
	"damage":                   "Parcel was damaged",
	"lost":                     "Parcel was lost",
}

// StatusDescription returns a readable text for a carrier status code.
func StatusDescription(status string) string {
	if d, ok := statusDescriptions[status]; ok {
		return d
	}
	return status
}

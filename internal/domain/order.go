package domain

const (
	DefaultShippingMethod = "Standard"
	DefaultPrintArea      = "default"
)

type PrintAsset struct {
	PrintArea string
	URL       string
}

// FulfillmentOrder is one order request sent to the print provider. It is
// built only from a completed payment event that passed admission, and is
// never mutated afterwards.
type FulfillmentOrder struct {
	SourceEventID  string
	SKU            string
	Copies         int
	ShippingMethod string
	Recipient      Recipient
	Assets         []PrintAsset
}

func NewFulfillmentOrder(ev PaymentEvent) FulfillmentOrder {
	return FulfillmentOrder{
		SourceEventID:  ev.EventID,
		SKU:            ev.ProductID,
		Copies:         1,
		ShippingMethod: DefaultShippingMethod,
		Recipient:      ev.Recipient,
		Assets: []PrintAsset{
			{PrintArea: DefaultPrintArea, URL: ev.ImageURL},
		},
	}
}

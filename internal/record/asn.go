package record

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mehdihou95/middleware-mapper/internal/transform"
)

// ASNHeader is the destination header for advance shipment notices
type ASNHeader struct {
	ID            string
	ClientID      string
	ASNNumber     string
	SupplierCode  string
	SupplierName  string
	ShipmentDate  time.Time
	ExpectedDate  time.Time
	CarrierCode   string
	TrailerNumber string
	Notes         string
	Status        string
	LineCount     int
	TotalQuantity decimal.Decimal
	Source        string
	CreatedAt     time.Time
}

// NewASNHeader creates a header with system defaults populated, so the
// record is structurally valid even when no rule maps a given field
func NewASNHeader(clientID string) *ASNHeader {
	return &ASNHeader{
		ClientID:      clientID,
		Status:        StatusNew,
		TotalQuantity: decimal.Zero,
		Source:        SourceInterface,
		CreatedAt:     time.Now().UTC(),
	}
}

// Table returns the destination table name
func (h *ASNHeader) Table() string { return TableASNHeader }

// RecordID returns the persisted identity, empty before persist
func (h *ASNHeader) RecordID() string { return h.ID }

// SetID assigns the persisted identity
func (h *ASNHeader) SetID(id string) { h.ID = id }

// FieldType returns the target type for a configured field name
func (h *ASNHeader) FieldType(field string) (transform.Type, bool) {
	return asnHeaderSchema.FieldType(field)
}

// Apply assigns a typed value to the named field
func (h *ASNHeader) Apply(field string, value interface{}) error {
	return asnHeaderSchema.Apply(h, field, value)
}

// Document renders the header for persistence
func (h *ASNHeader) Document() map[string]interface{} {
	return map[string]interface{}{
		"id":             h.ID,
		"client_id":      h.ClientID,
		"asn_number":     h.ASNNumber,
		"supplier_code":  h.SupplierCode,
		"supplier_name":  h.SupplierName,
		"shipment_date":  docTime(h.ShipmentDate),
		"expected_date":  docTime(h.ExpectedDate),
		"carrier_code":   h.CarrierCode,
		"trailer_number": h.TrailerNumber,
		"notes":          h.Notes,
		"status":         h.Status,
		"line_count":     h.LineCount,
		"total_quantity": h.TotalQuantity.String(),
		"source":         h.Source,
		"created_at":     docTime(h.CreatedAt),
	}
}

var asnHeaderSchema = Schema{
	"asnnumber": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).ASNNumber = s
		return nil
	}},
	"suppliercode": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).SupplierCode = s
		return nil
	}},
	"suppliername": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).SupplierName = s
		return nil
	}},
	"shipmentdate": {Type: transform.TypeDate, Assign: func(t, v interface{}) error {
		d, err := asTime(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).ShipmentDate = d
		return nil
	}},
	"expecteddate": {Type: transform.TypeDate, Assign: func(t, v interface{}) error {
		d, err := asTime(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).ExpectedDate = d
		return nil
	}},
	"carriercode": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).CarrierCode = s
		return nil
	}},
	"trailernumber": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).TrailerNumber = s
		return nil
	}},
	"notes": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).Notes = s
		return nil
	}},
	"status": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).Status = s
		return nil
	}},
	"totalquantity": {Type: transform.TypeDecimal, Assign: func(t, v interface{}) error {
		d, err := asDecimal(v)
		if err != nil {
			return err
		}
		t.(*ASNHeader).TotalQuantity = d
		return nil
	}},
}

// ASNLine is one shipment line owned by an ASNHeader
type ASNLine struct {
	HeaderID     string
	LineNo       int
	ItemCode     string
	Description  string
	Quantity     decimal.Decimal
	UOM          string
	LotNumber    string
	SerialNumber string
	ExpiryDate   time.Time
	Status       string
	Source       string
	CreatedAt    time.Time
}

// NewASNLine creates a line with system defaults populated
func NewASNLine() *ASNLine {
	return &ASNLine{
		Quantity:  decimal.Zero,
		Status:    StatusNew,
		Source:    SourceInterface,
		CreatedAt: time.Now().UTC(),
	}
}

// Table returns the destination table name
func (l *ASNLine) Table() string { return TableASNLine }

// SetHeaderID assigns the owning header's persisted identity
func (l *ASNLine) SetHeaderID(id string) { l.HeaderID = id }

// SetLineNo assigns the line number within the header
func (l *ASNLine) SetLineNo(n int) { l.LineNo = n }

// FieldType returns the target type for a configured field name
func (l *ASNLine) FieldType(field string) (transform.Type, bool) {
	return asnLineSchema.FieldType(field)
}

// Apply assigns a typed value to the named field
func (l *ASNLine) Apply(field string, value interface{}) error {
	return asnLineSchema.Apply(l, field, value)
}

// Document renders the line for persistence
func (l *ASNLine) Document() map[string]interface{} {
	return map[string]interface{}{
		"header_id":     l.HeaderID,
		"line_no":       l.LineNo,
		"item_code":     l.ItemCode,
		"description":   l.Description,
		"quantity":      l.Quantity.String(),
		"uom":           l.UOM,
		"lot_number":    l.LotNumber,
		"serial_number": l.SerialNumber,
		"expiry_date":   docTime(l.ExpiryDate),
		"status":        l.Status,
		"source":        l.Source,
		"created_at":    docTime(l.CreatedAt),
	}
}

var asnLineSchema = Schema{
	"lineno": {Type: transform.TypeInt, Assign: func(t, v interface{}) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).LineNo = int(n)
		return nil
	}},
	"itemcode": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).ItemCode = s
		return nil
	}},
	"description": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).Description = s
		return nil
	}},
	"quantity": {Type: transform.TypeDecimal, Assign: func(t, v interface{}) error {
		d, err := asDecimal(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).Quantity = d
		return nil
	}},
	"uom": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).UOM = s
		return nil
	}},
	"lotnumber": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).LotNumber = s
		return nil
	}},
	"serialnumber": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).SerialNumber = s
		return nil
	}},
	"expirydate": {Type: transform.TypeDate, Assign: func(t, v interface{}) error {
		d, err := asTime(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).ExpiryDate = d
		return nil
	}},
	"status": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*ASNLine).Status = s
		return nil
	}},
}

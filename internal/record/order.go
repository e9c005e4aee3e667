package record

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mehdihou95/middleware-mapper/internal/transform"
)

// OrderHeader is the destination header for customer orders
type OrderHeader struct {
	ID            string
	ClientID      string
	OrderNumber   string
	CustomerCode  string
	CustomerName  string
	OrderDate     time.Time
	RequestedDate time.Time
	ShipToName    string
	ShipToAddress string
	Priority      int
	Rush          bool
	TotalAmount   decimal.Decimal
	Status        string
	LineCount     int
	Source        string
	CreatedAt     time.Time
}

// NewOrderHeader creates a header with system defaults populated
func NewOrderHeader(clientID string) *OrderHeader {
	return &OrderHeader{
		ClientID:    clientID,
		Status:      StatusNew,
		TotalAmount: decimal.Zero,
		Source:      SourceInterface,
		CreatedAt:   time.Now().UTC(),
	}
}

// Table returns the destination table name
func (h *OrderHeader) Table() string { return TableOrderHeader }

// RecordID returns the persisted identity, empty before persist
func (h *OrderHeader) RecordID() string { return h.ID }

// SetID assigns the persisted identity
func (h *OrderHeader) SetID(id string) { h.ID = id }

// FieldType returns the target type for a configured field name
func (h *OrderHeader) FieldType(field string) (transform.Type, bool) {
	return orderHeaderSchema.FieldType(field)
}

// Apply assigns a typed value to the named field
func (h *OrderHeader) Apply(field string, value interface{}) error {
	return orderHeaderSchema.Apply(h, field, value)
}

// Document renders the header for persistence
func (h *OrderHeader) Document() map[string]interface{} {
	return map[string]interface{}{
		"id":              h.ID,
		"client_id":       h.ClientID,
		"order_number":    h.OrderNumber,
		"customer_code":   h.CustomerCode,
		"customer_name":   h.CustomerName,
		"order_date":      docTime(h.OrderDate),
		"requested_date":  docTime(h.RequestedDate),
		"ship_to_name":    h.ShipToName,
		"ship_to_address": h.ShipToAddress,
		"priority":        h.Priority,
		"rush":            h.Rush,
		"total_amount":    h.TotalAmount.String(),
		"status":          h.Status,
		"line_count":      h.LineCount,
		"source":          h.Source,
		"created_at":      docTime(h.CreatedAt),
	}
}

var orderHeaderSchema = Schema{
	"ordernumber": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).OrderNumber = s
		return nil
	}},
	"customercode": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).CustomerCode = s
		return nil
	}},
	"customername": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).CustomerName = s
		return nil
	}},
	"orderdate": {Type: transform.TypeDate, Assign: func(t, v interface{}) error {
		d, err := asTime(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).OrderDate = d
		return nil
	}},
	"requesteddate": {Type: transform.TypeDate, Assign: func(t, v interface{}) error {
		d, err := asTime(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).RequestedDate = d
		return nil
	}},
	"shiptoname": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).ShipToName = s
		return nil
	}},
	"shiptoaddress": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).ShipToAddress = s
		return nil
	}},
	"priority": {Type: transform.TypeInt, Assign: func(t, v interface{}) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).Priority = int(n)
		return nil
	}},
	"rush": {Type: transform.TypeBool, Assign: func(t, v interface{}) error {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).Rush = b
		return nil
	}},
	"totalamount": {Type: transform.TypeDecimal, Assign: func(t, v interface{}) error {
		d, err := asDecimal(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).TotalAmount = d
		return nil
	}},
	"status": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderHeader).Status = s
		return nil
	}},
}

// OrderLine is one order line owned by an OrderHeader
type OrderLine struct {
	HeaderID      string
	LineNo        int
	ItemCode      string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	UOM           string
	WarehouseCode string
	Status        string
	Source        string
	CreatedAt     time.Time
}

// NewOrderLine creates a line with system defaults populated
func NewOrderLine() *OrderLine {
	return &OrderLine{
		Quantity:  decimal.Zero,
		UnitPrice: decimal.Zero,
		Status:    StatusNew,
		Source:    SourceInterface,
		CreatedAt: time.Now().UTC(),
	}
}

// Table returns the destination table name
func (l *OrderLine) Table() string { return TableOrderLine }

// SetHeaderID assigns the owning header's persisted identity
func (l *OrderLine) SetHeaderID(id string) { l.HeaderID = id }

// SetLineNo assigns the line number within the header
func (l *OrderLine) SetLineNo(n int) { l.LineNo = n }

// FieldType returns the target type for a configured field name
func (l *OrderLine) FieldType(field string) (transform.Type, bool) {
	return orderLineSchema.FieldType(field)
}

// Apply assigns a typed value to the named field
func (l *OrderLine) Apply(field string, value interface{}) error {
	return orderLineSchema.Apply(l, field, value)
}

// Document renders the line for persistence
func (l *OrderLine) Document() map[string]interface{} {
	return map[string]interface{}{
		"header_id":      l.HeaderID,
		"line_no":        l.LineNo,
		"item_code":      l.ItemCode,
		"description":    l.Description,
		"quantity":       l.Quantity.String(),
		"unit_price":     l.UnitPrice.String(),
		"uom":            l.UOM,
		"warehouse_code": l.WarehouseCode,
		"status":         l.Status,
		"source":         l.Source,
		"created_at":     docTime(l.CreatedAt),
	}
}

var orderLineSchema = Schema{
	"lineno": {Type: transform.TypeInt, Assign: func(t, v interface{}) error {
		n, err := asInt(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).LineNo = int(n)
		return nil
	}},
	"itemcode": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).ItemCode = s
		return nil
	}},
	"description": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).Description = s
		return nil
	}},
	"quantity": {Type: transform.TypeDecimal, Assign: func(t, v interface{}) error {
		d, err := asDecimal(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).Quantity = d
		return nil
	}},
	"unitprice": {Type: transform.TypeDecimal, Assign: func(t, v interface{}) error {
		d, err := asDecimal(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).UnitPrice = d
		return nil
	}},
	"uom": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).UOM = s
		return nil
	}},
	"warehousecode": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).WarehouseCode = s
		return nil
	}},
	"status": {Type: transform.TypeString, Assign: func(t, v interface{}) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		t.(*OrderLine).Status = s
		return nil
	}},
}

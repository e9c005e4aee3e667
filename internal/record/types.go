package record

// Table names of the destination record types
const (
	TableASNHeader   = "asn_header"
	TableASNLine     = "asn_line"
	TableOrderHeader = "order_header"
	TableOrderLine   = "order_line"
)

// System default values assigned at record creation, before any rule runs
const (
	StatusNew       = "NEW"
	SourceInterface = "INTERFACE"
)

// Header is a destination header record. Lines reference their owning
// header by the identity assigned at persist time, so SetID must be called
// by the persistence boundary before lines are bound.
type Header interface {
	Target
	Table() string
	RecordID() string
	SetID(id string)
	Document() map[string]interface{}
}

// Line is a destination line record owned by one header
type Line interface {
	Target
	Table() string
	SetHeaderID(id string)
	SetLineNo(n int)
	Document() map[string]interface{}
}

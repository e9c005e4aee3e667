package mapping

// Rule is one configured binding between a source path and a target field
type Rule struct {
	SourcePath     string `json:"sourcePath"`
	TargetField    string `json:"targetField"`
	TableName      string `json:"tableName"`
	Transformation string `json:"transformation,omitempty"`
	IsActive       bool   `json:"isActive"`
	Priority       int    `json:"priority"`
	Required       bool   `json:"required"`
	DefaultValue   string `json:"defaultValue,omitempty"`
}

// Interface identifies one client interface configuration. DocType selects
// the document strategy; ID scopes the mapping-rule set.
type Interface struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	DocType string `json:"docType"`
}

package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	// ActionStatus moves an invoice between PENDING and PAID, or flips a
	// user's enabled flag.
	ActionStatus Action = "status"
	ActionExport Action = "export"
)

// Resource types known to the application.
const (
	ResourceInvoice  = "invoice"
	ResourceProduct  = "product"
	ResourceClient   = "client"
	ResourceCompany  = "company"
	ResourceUser     = "user"
	ResourceActivity = "activity"
)

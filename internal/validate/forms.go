package validate

// Form structs mirror the HTML form fields; every value arrives as text.

type UserForm struct {
	Username string `validate:"required,max=50,username"`
	Password string `validate:"required,min=8,max=72"`
	Role     string `validate:"omitempty,oneof=staff admin"`
}

type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type ProductForm struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=255"`
	Category    string `validate:"max=50"`
	Price       string `validate:"required,price"`
}

type TransactionForm struct {
	ProductID string `validate:"required,number"`
	Type      string `validate:"required,oneof=inbound outbound"`
	Quantity  string `validate:"required,number"`
	Notes     string `validate:"max=255"`
}

type EditTransactionForm struct {
	Type     string `validate:"required,oneof=inbound outbound"`
	Quantity string `validate:"required,number"`
	Notes    string `validate:"max=255"`
}

type StockForm struct {
	Quantity string `validate:"required,number"`
}

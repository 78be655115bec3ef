package domain

// Variable is a design variable as stored in the host document.
type Variable struct {
	Name  string
	Value Expr
}

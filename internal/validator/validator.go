package validator

// Validator bundles the struct and business rule validators used by the
// service layer.
type Validator struct {
	business *BusinessValidator
}

// New creates a fully wired validator.
func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// GetBusinessValidator exposes the business rule validator.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate runs struct tag validation on any request type.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}

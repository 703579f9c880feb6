package webhook

// Payload is the body of a bank capture notification. Amount arrives as
// text; it is parsed into minor units after validation.
type Payload struct {
	Token          string `json:"token" validate:"required"`
	UserIdentifier int64  `json:"user_identifier" validate:"gt=0"`
	Amount         string `json:"amount" validate:"required,minor_units"`
}

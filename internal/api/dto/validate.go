package dto

import "github.com/flexprice/playerseats/internal/validator"

func validateStruct(req interface{}) error {
	return validator.ValidateRequest(req)
}

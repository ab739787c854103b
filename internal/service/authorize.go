package service

import "github.com/sakif/safari-community/internal/apperror"

// authorize is the ownership gate every mutable resource goes through.
//
// Callers fetch the resource first, so a missing id is already NotFound by
// the time this runs — NotFound always precedes Forbidden. Forbidden
// triggers exactly when the resource's creator is not the caller.
func authorize(createdBy, caller string) error {
	if caller == "" {
		return apperror.Unauthenticated("authentication required")
	}
	if createdBy != caller {
		return apperror.Forbidden("only the creator may modify this resource")
	}
	return nil
}

package domain

import (
	"errors"
)

var (
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetIngredient  = "success get ingredient"
	MessageSuccessGetTags        = "success get tags"
	MessageSuccessGetTag         = "success get tag"

	MessageFailedGetIngredients = "failed to get ingredients"
	MessageFailedGetIngredient  = "failed to get ingredient"
	MessageFailedGetTags        = "failed to get tags"
	MessageFailedGetTag         = "failed to get tag"

	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag not found")
)

type (
	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	TagResponse struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ColorCode string `json:"color_code"`
		Slug      string `json:"slug"`
	}
)

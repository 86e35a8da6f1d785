package handler

import "github.com/infield/user-service/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type addSkillsRequest struct {
	Specialties []string `json:"specialties" validate:"omitempty,dive,specialty"`
	Regions     []string `json:"regions"     validate:"omitempty,dive,region"`
}

type removeSpecialtyRequest struct {
	Specialty string `json:"specialty"`
}

type removeRegionRequest struct {
	Region string `json:"region"`
}

type confirmPhoneRequest struct {
	Code string `json:"code" validate:"omitempty,len=6,numeric"`
}

type rateRequest struct {
	Score int `json:"score" validate:"required,min=1,max=5"`
}

type specialtiesResponse struct {
	Specialties []string `json:"specialties"`
}

type regionsResponse struct {
	Regions []string `json:"regions"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// userResponse documents the client-safe user projection for swagger.
type userResponse = domain.UserView

type userNameResponse = domain.UserName

/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	schederrors "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/errors"
)

type ApiError struct {
	HttpCode     int    `json:"-"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (err *ApiError) Error() string {
	return err.ErrorMessage
}

func AbortWithApiError(c *gin.Context, err error) {
	handleErrors(c, err)
	rsp := cvtToErrResponse(err)
	c.AbortWithStatusJSON(rsp.HttpCode, rsp)
}

func cvtToErrResponse(err error) ApiError {
	var result *ApiError
	if errors.As(err, &result) {
		return *result
	}
	var err2 *apierrors.StatusError
	if !errors.As(err, &err2) {
		switch {
		case apierrors.IsNotFound(err):
			err2 = schederrors.NewNotFoundWithMessage(err.Error())
		case apierrors.IsBadRequest(err), apierrors.IsInvalid(err):
			err2 = schederrors.NewValidationFailed(err.Error())
		case apierrors.IsRequestEntityTooLargeError(err):
			err2 = schederrors.NewRequestEntityTooLargeError(err.Error())
		case apierrors.IsTooManyRequests(err):
			err2 = schederrors.NewTooManyRequests(err.Error())
		default:
			err2 = schederrors.NewInternalError(err.Error())
		}
	}
	return ApiError{
		HttpCode:     int(err2.Status().Code),
		ErrorCode:    string(err2.Status().Reason),
		ErrorMessage: err2.Error(),
	}
}

func handleErrors(c *gin.Context, err error) {
	var errs []error
	if aggregate, ok := err.(utilerrors.Aggregate); ok {
		errs = aggregate.Errors()
	} else {
		errs = []error{err}
	}
	for _, val := range errs {
		if val != nil {
			// Attach the error to the request so the logging middleware sees it.
			_ = c.Error(val)
		}
	}
}

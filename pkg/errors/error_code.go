/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package errors

import (
	"fmt"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Error codes are the wire-visible reason strings of the control API. Every
// error constructed here carries one of them; transport maps them to the
// response body verbatim.
const (
	InternalError       = "internal_error"
	ValidationFailed    = "validation_failed"
	TenantMissing       = "tenant_missing"
	TenantRejected      = "tenant_rejected"
	DuplicateWorkflowId = "duplicate_workflow_id"
	NotFound            = "not_found"
	NotCancellable      = "not_cancellable"
	TooManyRequests     = "too_many_requests"
	EntityTooLarge      = "request_entity_too_large"
)

var knownReasons = map[metav1.StatusReason]bool{
	InternalError:       true,
	ValidationFailed:    true,
	TenantMissing:       true,
	TenantRejected:      true,
	DuplicateWorkflowId: true,
	NotFound:            true,
	NotCancellable:      true,
	TooManyRequests:     true,
	EntityTooLarge:      true,
}

// IsSchedulerError returns true if the error carries one of our reason codes.
func IsSchedulerError(err error) bool {
	if err == nil {
		return false
	}
	return knownReasons[apierrors.ReasonForError(err)]
}

func IsValidationFailed(err error) bool {
	return apierrors.ReasonForError(err) == ValidationFailed
}

func IsTenantMissing(err error) bool {
	return apierrors.ReasonForError(err) == TenantMissing
}

func IsTenantRejected(err error) bool {
	return apierrors.ReasonForError(err) == TenantRejected
}

func IsDuplicateWorkflowId(err error) bool {
	return apierrors.ReasonForError(err) == DuplicateWorkflowId
}

func IsNotFound(err error) bool {
	return apierrors.ReasonForError(err) == NotFound
}

func IsNotCancellable(err error) bool {
	return apierrors.ReasonForError(err) == NotCancellable
}

func IsTooManyRequests(err error) bool {
	return apierrors.ReasonForError(err) == TooManyRequests
}

func IsInternal(err error) bool {
	return apierrors.ReasonForError(err) == InternalError
}

func IgnoreFound(err error) error {
	if err == nil || IsNotFound(err) {
		return nil
	}
	return err
}

func GetErrorCode(err error) string {
	if err == nil || !IsSchedulerError(err) {
		return ""
	}
	return string(apierrors.ReasonForError(err))
}

func NewInternalError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusInternalServerError,
		Reason:  InternalError,
		Message: fmt.Sprintf("Internal error. %s", message),
	}}
}

func NewValidationFailed(reason string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusBadRequest,
		Reason:  ValidationFailed,
		Message: fmt.Sprintf("Validation failed. %s", reason),
	}}
}

func NewTenantMissing() *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusUnauthorized,
		Reason:  TenantMissing,
		Message: "Missing X-User-ID header",
	}}
}

func NewTenantRejected(tenantId string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusTooManyRequests,
		Reason:  TenantRejected,
		Message: fmt.Sprintf("the tenant(%s) was rejected: active user limit reached", tenantId),
	}}
}

func NewDuplicateWorkflowId(workflowId string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusConflict,
		Reason:  DuplicateWorkflowId,
		Message: fmt.Sprintf("workflow %s already exists", workflowId),
	}}
}

func NewNotFound(kind, name string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status: metav1.StatusFailure,
		Code:   http.StatusNotFound,
		Reason: NotFound,
		Details: &metav1.StatusDetails{
			Kind: kind,
			Name: name,
		},
		Message: fmt.Sprintf("%s %s not found.", kind, name),
	}}
}

func NewNotFoundWithMessage(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusNotFound,
		Reason:  NotFound,
		Message: message,
	}}
}

func NewNotCancellable(jobId, status string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusConflict,
		Reason:  NotCancellable,
		Message: fmt.Sprintf("job %s is %s and can no longer be cancelled", jobId, status),
	}}
}

func NewTooManyRequests(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusTooManyRequests,
		Reason:  TooManyRequests,
		Message: message,
	}}
}

func NewRequestEntityTooLargeError(message string) *apierrors.StatusError {
	return &apierrors.StatusError{ErrStatus: metav1.Status{
		Status:  metav1.StatusFailure,
		Code:    http.StatusRequestEntityTooLarge,
		Reason:  EntityTooLarge,
		Message: fmt.Sprintf("Request entity too large. %s", message),
	}}
}

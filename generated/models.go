// Package generated contains the Alert Center v1beta1 representations and
// the operation table derived from the service's Discovery document.
//
// models.go is maintained by hand; operations_gen.go is written by
// cmd/generate-operations.
package generated

import (
	"time"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
)

// Feedback types accepted by CreateAlertFeedback.
const (
	AlertFeedbackTypeUnspecified    = "ALERT_FEEDBACK_TYPE_UNSPECIFIED"
	AlertFeedbackTypeNotUseful      = "NOT_USEFUL"
	AlertFeedbackTypeSomewhatUseful = "SOMEWHAT_USEFUL"
	AlertFeedbackTypeVeryUseful     = "VERY_USEFUL"
)

// Alert is an alert affecting a customer.
type Alert struct {
	// AlertID is the unique identifier for the alert. Output only.
	AlertID string `json:"alertId,omitempty"`
	// CreateTime is when this alert was created. Output only.
	CreateTime string `json:"createTime,omitempty"`
	// CustomerID is the unique identifier of the organization account.
	CustomerID string `json:"customerId,omitempty"`
	// Data is the alert payload; its "@type" names the concrete alert type.
	Data map[string]any `json:"data,omitempty"`
	// Deleted is true if the alert is marked for deletion. Output only.
	Deleted bool `json:"deleted,omitempty"`
	// EndTime is when the event that caused this alert ceased being active.
	EndTime string `json:"endTime,omitempty"`
	// SecurityInvestigationToolLink links to the security investigation tool.
	SecurityInvestigationToolLink string `json:"securityInvestigationToolLink,omitempty"`
	// Source identifies the system that reported the alert.
	Source string `json:"source,omitempty"`
	// StartTime is when the event that caused this alert was started or detected.
	StartTime string `json:"startTime,omitempty"`
	// Type is the type of the alert.
	Type string `json:"type,omitempty"`
	// UpdateTime is when this alert was last updated. Output only.
	UpdateTime string `json:"updateTime,omitempty"`
}

// CreatedAt parses CreateTime.
func (a *Alert) CreatedAt() (time.Time, error) {
	return core.ParseTimestamp(a.CreateTime)
}

// StartedAt parses StartTime.
func (a *Alert) StartedAt() (time.Time, error) {
	return core.ParseTimestamp(a.StartTime)
}

// EndedAt parses EndTime. An alert that is still active has no end time.
func (a *Alert) EndedAt() (time.Time, bool, error) {
	if a.EndTime == "" {
		return time.Time{}, false, nil
	}
	t, err := core.ParseTimestamp(a.EndTime)
	return t, err == nil, err
}

// DataType returns the "@type" of the alert payload.
func (a *Alert) DataType() string {
	if a.Data == nil {
		return ""
	}
	s, _ := a.Data["@type"].(string)
	return s
}

// AlertFeedback is a customer feedback about an alert.
type AlertFeedback struct {
	// AlertID is the alert identifier. Output only.
	AlertID string `json:"alertId,omitempty"`
	// CreateTime is when this feedback was created. Output only.
	CreateTime string `json:"createTime,omitempty"`
	// CustomerID is the unique identifier of the organization account. Output only.
	CustomerID string `json:"customerId,omitempty"`
	// Email of the user that provided the feedback. Output only.
	Email string `json:"email,omitempty"`
	// FeedbackID is the unique identifier for the feedback. Output only.
	FeedbackID string `json:"feedbackId,omitempty"`
	// Type is the type of the feedback. Required.
	Type string `json:"type" validate:"required,oneof=ALERT_FEEDBACK_TYPE_UNSPECIFIED NOT_USEFUL SOMEWHAT_USEFUL VERY_USEFUL"`
}

// CreatedAt parses CreateTime.
func (f *AlertFeedback) CreatedAt() (time.Time, error) {
	return core.ParseTimestamp(f.CreateTime)
}

// ListAlertsResponse is the response to an alert listing request.
type ListAlertsResponse struct {
	Alerts []Alert `json:"alerts,omitempty"`
	// NextPageToken is passed as pageToken to fetch the next page. Empty on the last page.
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// ListAlertFeedbackResponse is the response to an alert feedback listing request.
type ListAlertFeedbackResponse struct {
	// Feedback is sorted in descending order by creation time.
	Feedback []AlertFeedback `json:"feedback,omitempty"`
}

// Empty is the response of operations that return no data.
type Empty struct{}

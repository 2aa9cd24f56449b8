package generated

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
)

func TestRegistry(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		request  string
		response string
	}{
		{OpDeleteAlert, "DELETE", "v1beta1/alerts/{alertId}", "", "Empty"},
		{OpGetAlert, "GET", "v1beta1/alerts/{alertId}", "", "Alert"},
		{OpListAlerts, "GET", "v1beta1/alerts", "", "ListAlertsResponse"},
		{OpCreateAlertFeedback, "POST", "v1beta1/alerts/{alertId}/feedback", "AlertFeedback", "AlertFeedback"},
		{OpListAlertFeedbacks, "GET", "v1beta1/alerts/{alertId}/feedback", "", "ListAlertFeedbackResponse"},
	}

	if Registry.Len() != len(tests) {
		t.Fatalf("Registry.Len() = %d, want %d", Registry.Len(), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Registry.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", tt.name, err)
			}
			if tmpl.Method() != tt.method {
				t.Errorf("Method() = %q, want %q", tmpl.Method(), tt.method)
			}
			if tmpl.Path() != tt.path {
				t.Errorf("Path() = %q, want %q", tmpl.Path(), tt.path)
			}
			if tmpl.RequestShape() != tt.request {
				t.Errorf("RequestShape() = %q, want %q", tmpl.RequestShape(), tt.request)
			}
			if tmpl.ResponseShape() != tt.response {
				t.Errorf("ResponseShape() = %q, want %q", tmpl.ResponseShape(), tt.response)
			}
		})
	}
}

func TestListAlertsParameterOrder(t *testing.T) {
	var names []string
	for _, p := range ListAlerts.Params() {
		if p.Location != endpoint.LocationQuery {
			t.Errorf("parameter %q location = %q, want query", p.Name, p.Location)
		}
		names = append(names, p.Name)
	}
	want := []string{"customerId", "filter", "orderBy", "pageSize", "pageToken", "fields", "quotaUser"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("ListAlerts params mismatch (-want +got):\n%s", diff)
	}
}

func TestAlertTimestamps(t *testing.T) {
	a := &Alert{
		CreateTime: "2024-01-15T10:30:00.123456Z",
		StartTime:  "2024-01-15T10:00:00Z",
		Data:       map[string]any{"@type": "type.googleapis.com/google.apps.alertcenter.type.DeviceCompromised"},
	}

	created, err := a.CreatedAt()
	if err != nil {
		t.Fatalf("CreatedAt() error = %v", err)
	}
	if created.Nanosecond() != 123456000 {
		t.Errorf("CreatedAt().Nanosecond() = %d", created.Nanosecond())
	}
	if _, err := a.StartedAt(); err != nil {
		t.Errorf("StartedAt() error = %v", err)
	}
	if _, ok, err := a.EndedAt(); ok || err != nil {
		t.Errorf("EndedAt() = %v, %v; want not ended", ok, err)
	}
	if a.DataType() != "type.googleapis.com/google.apps.alertcenter.type.DeviceCompromised" {
		t.Errorf("DataType() = %q", a.DataType())
	}
}

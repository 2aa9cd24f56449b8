package client

import (
	"context"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
	"github.com/DrewBradfordXYZ/alertcenter-go/generated"
)

// --- Typed operation wrappers ---
//
// Each operation has a ...Command builder, for use with Execute or a Batch,
// and a method that builds and executes the command in one call.

// AlertOptions are the optional parameters shared by single-alert operations.
type AlertOptions struct {
	// CustomerID is the unique identifier of the organization account.
	// Inferred from the caller identity when absent.
	CustomerID endpoint.Opt[string]
	// Fields selects a partial response.
	Fields endpoint.Opt[string]
	// QuotaUser overrides the client's default quota user.
	QuotaUser endpoint.Opt[string]
}

func (o *AlertOptions) args(alertID string) endpoint.Args {
	args := endpoint.Args{"alertId": endpoint.Some(alertID)}
	if o != nil {
		args["customerId"] = o.CustomerID
		args["fields"] = o.Fields
		args["quotaUser"] = o.QuotaUser
	}
	return args
}

// ListAlertsOptions are the optional parameters of ListAlerts.
type ListAlertsOptions struct {
	CustomerID endpoint.Opt[string]
	// Filter is a query string for filtering alert results.
	Filter endpoint.Opt[string]
	// OrderBy is the sort order, e.g. "createTime desc".
	OrderBy endpoint.Opt[string]
	// PageSize is the requested page size. The server may return fewer.
	PageSize endpoint.Opt[int]
	// PageToken is the NextPageToken of a previous response.
	PageToken endpoint.Opt[string]
	Fields    endpoint.Opt[string]
	QuotaUser endpoint.Opt[string]
}

func (o *ListAlertsOptions) args() endpoint.Args {
	if o == nil {
		return endpoint.Args{}
	}
	return endpoint.Args{
		"customerId": o.CustomerID,
		"filter":     o.Filter,
		"orderBy":    o.OrderBy,
		"pageSize":   o.PageSize,
		"pageToken":  o.PageToken,
		"fields":     o.Fields,
		"quotaUser":  o.QuotaUser,
	}
}

// ListAlertFeedbacksOptions are the optional parameters of ListAlertFeedbacks.
type ListAlertFeedbacksOptions struct {
	CustomerID endpoint.Opt[string]
	Filter     endpoint.Opt[string]
	Fields     endpoint.Opt[string]
	QuotaUser  endpoint.Opt[string]
}

func (o *ListAlertFeedbacksOptions) args(alertID string) endpoint.Args {
	args := endpoint.Args{"alertId": endpoint.Some(alertID)}
	if o != nil {
		args["customerId"] = o.CustomerID
		args["filter"] = o.Filter
		args["fields"] = o.Fields
		args["quotaUser"] = o.QuotaUser
	}
	return args
}

// alertDecoder decodes an Alert, converting payload timestamps when enabled.
func (c *Client) alertDecoder() Decoder {
	base := DecodeJSON[generated.Alert]()
	if !c.convertDates {
		return base
	}
	return func(body []byte) (any, error) {
		v, err := base(body)
		if err != nil {
			return nil, err
		}
		alert := v.(*generated.Alert)
		alert.Data = core.TransformDates(alert.Data, true)
		return alert, nil
	}
}

func (c *Client) listAlertsDecoder() Decoder {
	base := DecodeJSON[generated.ListAlertsResponse]()
	if !c.convertDates {
		return base
	}
	return func(body []byte) (any, error) {
		v, err := base(body)
		if err != nil {
			return nil, err
		}
		resp := v.(*generated.ListAlertsResponse)
		for i := range resp.Alerts {
			resp.Alerts[i].Data = core.TransformDates(resp.Alerts[i].Data, true)
		}
		return resp, nil
	}
}

// DeleteAlertCommand builds a command that marks an alert for deletion.
func (c *Client) DeleteAlertCommand(alertID string, opts *AlertOptions) (*Command, error) {
	cmd, err := c.NewCommand(generated.OpDeleteAlert, opts.args(alertID))
	if err != nil {
		return nil, err
	}
	cmd.SetResponseDecoder(DecodeJSON[generated.Empty]())
	return cmd, nil
}

// DeleteAlert marks the alert for deletion. Deleted alerts can be undeleted
// for a period of time.
func (c *Client) DeleteAlert(ctx context.Context, alertID string, opts *AlertOptions) error {
	cmd, err := c.DeleteAlertCommand(alertID, opts)
	if err != nil {
		return err
	}
	_, err = c.Execute(ctx, cmd)
	return err
}

// GetAlertCommand builds a command that fetches one alert.
func (c *Client) GetAlertCommand(alertID string, opts *AlertOptions) (*Command, error) {
	cmd, err := c.NewCommand(generated.OpGetAlert, opts.args(alertID))
	if err != nil {
		return nil, err
	}
	cmd.SetResponseDecoder(c.alertDecoder())
	return cmd, nil
}

// GetAlert fetches the specified alert.
func (c *Client) GetAlert(ctx context.Context, alertID string, opts *AlertOptions) (*generated.Alert, error) {
	cmd, err := c.GetAlertCommand(alertID, opts)
	if err != nil {
		return nil, err
	}
	return Do[generated.Alert](ctx, c, cmd)
}

// ListAlertsCommand builds a command that lists one page of alerts.
func (c *Client) ListAlertsCommand(opts *ListAlertsOptions) (*Command, error) {
	cmd, err := c.NewCommand(generated.OpListAlerts, opts.args())
	if err != nil {
		return nil, err
	}
	cmd.SetResponseDecoder(c.listAlertsDecoder())
	return cmd, nil
}

// ListAlerts lists one page of alerts.
func (c *Client) ListAlerts(ctx context.Context, opts *ListAlertsOptions) (*generated.ListAlertsResponse, error) {
	cmd, err := c.ListAlertsCommand(opts)
	if err != nil {
		return nil, err
	}
	return Do[generated.ListAlertsResponse](ctx, c, cmd)
}

// CreateAlertFeedbackCommand builds a command that records feedback on an alert.
func (c *Client) CreateAlertFeedbackCommand(alertID string, feedback *generated.AlertFeedback, opts *AlertOptions) (*Command, error) {
	cmd, err := c.NewCommand(generated.OpCreateAlertFeedback, opts.args(alertID))
	if err != nil {
		return nil, err
	}
	if feedback != nil {
		if err := cmd.AttachRequestBody(feedback, JSONEncoder); err != nil {
			return nil, err
		}
	}
	cmd.SetResponseDecoder(DecodeJSON[generated.AlertFeedback]())
	return cmd, nil
}

// CreateAlertFeedback records feedback on an alert and returns the stored feedback.
func (c *Client) CreateAlertFeedback(ctx context.Context, alertID string, feedback *generated.AlertFeedback, opts *AlertOptions) (*generated.AlertFeedback, error) {
	cmd, err := c.CreateAlertFeedbackCommand(alertID, feedback, opts)
	if err != nil {
		return nil, err
	}
	return Do[generated.AlertFeedback](ctx, c, cmd)
}

// ListAlertFeedbacksCommand builds a command that lists the feedback of an alert.
func (c *Client) ListAlertFeedbacksCommand(alertID string, opts *ListAlertFeedbacksOptions) (*Command, error) {
	cmd, err := c.NewCommand(generated.OpListAlertFeedbacks, opts.args(alertID))
	if err != nil {
		return nil, err
	}
	cmd.SetResponseDecoder(DecodeJSON[generated.ListAlertFeedbackResponse]())
	return cmd, nil
}

// ListAlertFeedbacks lists all the feedback for an alert.
func (c *Client) ListAlertFeedbacks(ctx context.Context, alertID string, opts *ListAlertFeedbacksOptions) (*generated.ListAlertFeedbackResponse, error) {
	cmd, err := c.ListAlertFeedbacksCommand(alertID, opts)
	if err != nil {
		return nil, err
	}
	return Do[generated.ListAlertFeedbackResponse](ctx, c, cmd)
}

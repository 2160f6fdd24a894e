package hmrc

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mtd/internal/calendar"
	"mtd/internal/fraud"
	"mtd/internal/model"
	"mtd/internal/obligation"
)

const (
	BusinessDetailsVersion = "1.0"
	ObligationsVersion     = "3.0"

	dateLayout = "2006-01-02"
)

type businessListResponse struct {
	ListOfBusinesses []struct {
		TypeOfBusiness string `json:"typeOfBusiness"`
		BusinessID     string `json:"businessId"`
		TradingName    string `json:"tradingName"`
	} `json:"listOfBusinesses"`
}

// ListBusinesses returns the income sources registered for nino.
func (c *Client) ListBusinesses(ctx context.Context, nino string, headers fraud.HeaderSet) ([]model.Business, error) {
	var out businessListResponse
	_, err := c.Do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/individuals/business/details/" + url.PathEscape(nino) + "/list",
		APIVersion: BusinessDetailsVersion,
		Headers:    headers,
	}, &out)
	if err != nil {
		return nil, err
	}

	businesses := make([]model.Business, 0, len(out.ListOfBusinesses))
	for _, b := range out.ListOfBusinesses {
		businesses = append(businesses, model.Business{
			BusinessID:  b.BusinessID,
			Type:        b.TypeOfBusiness,
			TradingName: b.TradingName,
		})
	}
	return businesses, nil
}

type obligationsResponse struct {
	Obligations []struct {
		TypeOfBusiness    string `json:"typeOfBusiness"`
		BusinessID        string `json:"businessId"`
		ObligationDetails []struct {
			PeriodStartDate string `json:"periodStartDate"`
			PeriodEndDate   string `json:"periodEndDate"`
			DueDate         string `json:"dueDate"`
			ReceivedDate    string `json:"receivedDate"`
			PeriodKey       string `json:"periodKey"`
			Status          string `json:"status"`
		} `json:"obligationDetails"`
	} `json:"obligations"`
}

// ListObligations returns the quarterly obligations between from and to.
func (c *Client) ListObligations(ctx context.Context, nino string, from, to time.Time, headers fraud.HeaderSet) ([]obligation.Obligation, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("fromDate", from.Format(dateLayout))
	}
	if !to.IsZero() {
		query.Set("toDate", to.Format(dateLayout))
	}

	var out obligationsResponse
	_, err := c.Do(ctx, Request{
		Method:     http.MethodGet,
		Path:       "/obligations/details/" + url.PathEscape(nino) + "/income-and-expenditure",
		Query:      query,
		APIVersion: ObligationsVersion,
		Headers:    headers,
	}, &out)
	if err != nil {
		return nil, err
	}

	var result []obligation.Obligation
	for _, group := range out.Obligations {
		for _, d := range group.ObligationDetails {
			start, err1 := time.Parse(dateLayout, d.PeriodStartDate)
			end, err2 := time.Parse(dateLayout, d.PeriodEndDate)
			due, err3 := time.Parse(dateLayout, d.DueDate)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("invalid obligation dates for business %s: %s to %s due %s",
					group.BusinessID, d.PeriodStartDate, d.PeriodEndDate, d.DueDate)
			}

			o := obligation.Obligation{
				BusinessID:   group.BusinessID,
				BusinessType: group.TypeOfBusiness,
				Period:       calendar.NewPeriod(start, end),
				DueDate:      calendar.Day(due),
				Status:       obligation.StatusOpen,
				PeriodKey:    d.PeriodKey,
			}
			if strings.EqualFold(d.Status, "fulfilled") || strings.EqualFold(d.Status, "F") {
				o.Status = obligation.StatusFulfilled
			}
			if d.ReceivedDate != "" {
				if received, err := time.Parse(dateLayout, d.ReceivedDate); err == nil {
					received = calendar.Day(received)
					o.ReceivedDate = &received
				}
			}
			result = append(result, o)
		}
	}
	return result, nil
}

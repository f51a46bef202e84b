package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// maxPickupsPerCategory is how many upcoming dates are kept per category.
const maxPickupsPerCategory = 2

// FetchPickupTimes runs the login/renew/fetch sequence for a finalized configuration and
// returns the next pickup dates per selected waste category.
//
// It returns (nil, nil) when the vendor could not be reached or the data endpoint did not
// answer 200; the caller keeps its previous data and tries again on its next cycle.
// Malformed payloads are reported as *PayloadError.
func (c *Client) FetchPickupTimes(ctx context.Context, cfg Configuration) (PickupResult, error) {
	local := cfg.Clone()

	if _, err := c.EnsureAuthenticated(ctx, &local); err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) || ctx.Err() != nil {
			return nil, err
		}
		c.logger.WarnContext(ctx, "login failed, skipping pickup fetch", "err", err)
		return nil, nil
	}

	s, err := c.openSession()
	if err != nil {
		return nil, err
	}
	defer s.close()

	payload := loginFields(&local)
	cookies := local.Cookie.HTTPCookies()

	if res, err := s.post(ctx, EndpointLogin, payload, cookies); err != nil {
		c.logger.WarnContext(ctx, "session login failed", "err", err)
	} else if res.StatusCode() != http.StatusOK {
		c.logger.WarnContext(ctx, "session login failed", "status", res.StatusCode())
	}

	// The renew call only refreshes the vendor cache; its outcome is not checked.
	_, _ = s.post(ctx, EndpointRenew, payload, cookies)

	// The data endpoint is called without cookies.
	res, err := s.post(ctx, EndpointData, payload, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "error in fetching pickup times", "err", err)
		return nil, nil
	}
	if res.StatusCode() != http.StatusOK {
		c.logger.WarnContext(ctx, "error in fetching pickup times", "status", res.StatusCode())
		return nil, nil
	}

	records, err := parsePickupPayload(c.logger, res.Body())
	if err != nil {
		var perr *PayloadError
		if errors.As(err, &perr) {
			perr.Endpoint = string(EndpointData)
			perr.StatusCode = res.StatusCode()
		}
		c.logger.ErrorContext(ctx, "unexpected pickup payload", "endpoint", string(EndpointData), "status", res.StatusCode(), "err", err)
		return nil, err
	}

	return ExtractPickups(records, local.Abfallarten), nil
}

// ExtractPickups collects, for every category, the first two matching records in payload
// order. A record matches when the token after the first "-" of its category id equals
// the category's Data. Dates are reduced to the calendar day.
func ExtractPickups(records []PickupRecord, categories []Option) PickupResult {
	result := make(PickupResult, len(categories))
	for _, cat := range categories {
		dates := []time.Time{}
		for _, r := range records {
			if len(dates) >= maxPickupsPerCategory {
				break
			}
			if tok := r.CategoryToken(); tok != "" && tok == cat.Data {
				dates = append(dates, dateOnly(r.PickupDate))
			}
		}
		result[cat.Name] = dates
	}
	return result
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

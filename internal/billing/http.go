package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPSource fetches charges from a JSON endpoint. The endpoint is expected
// to return {"rent_cents": N, "utilities_cents": N}.
type HTTPSource struct {
	httpClient *http.Client
	url        string
}

var _ Source = (*HTTPSource)(nil)

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		// Scraping-backed endpoints can be slow; give them room.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		url:        url,
	}
}

// FetchCurrentCharges implements Source.
func (s *HTTPSource) FetchCurrentCharges(ctx context.Context) (Charges, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Charges{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Charges{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Charges{}, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var charges Charges
	if err := json.NewDecoder(resp.Body).Decode(&charges); err != nil {
		return Charges{}, fmt.Errorf("decode charges: %w", err)
	}
	if charges.RentCents < 0 || charges.UtilityCents < 0 {
		return Charges{}, fmt.Errorf("negative charge amounts: rent=%d utilities=%d",
			charges.RentCents, charges.UtilityCents)
	}

	slog.InfoContext(ctx, "Charges fetched",
		"rent_cents", charges.RentCents,
		"utility_cents", charges.UtilityCents)
	return charges, nil
}

// StaticSource returns fixed charges, for apartments whose rent never moves
// and for local development.
type StaticSource struct {
	charges Charges
}

var _ Source = (*StaticSource)(nil)

func NewStaticSource(rentCents, utilityCents int64) *StaticSource {
	return &StaticSource{charges: Charges{RentCents: rentCents, UtilityCents: utilityCents}}
}

// FetchCurrentCharges implements Source.
func (s *StaticSource) FetchCurrentCharges(_ context.Context) (Charges, error) {
	return s.charges, nil
}

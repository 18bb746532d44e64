// Package pubchem implements the external chemical identity lookup against
// the PubChem PUG REST API.
package pubchem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// DefaultBaseURL is the public PUG REST endpoint.
const DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// compoundURLFormat renders the human-facing compound page for a CID.
const compoundURLFormat = "https://pubchem.ncbi.nlm.nih.gov/compound/%d"

// Properties holds the property record fetched for one compound.
type Properties struct {
	CID              int64   `json:"cid"`
	MolecularFormula string  `json:"molecular_formula"`
	MolecularWeight  float64 `json:"molecular_weight"`
	IUPACName        string  `json:"iupac_name"`
	InChIKey         string  `json:"inchi_key"`
	CanonicalSMILES  string  `json:"canonical_smiles"`
}

// Client abstracts the three PUG REST operations the enrichment pipeline
// needs. Every method distinguishes "compound not in the database" (an error
// with CodeNotFound) from a transport or service failure (CodeExternalService
// or CodeTimeout), so callers never have to inspect error strings.
type Client interface {
	// CIDByName resolves a free-text name or CAS number to the first
	// matching compound identifier.
	CIDByName(ctx context.Context, name string) (int64, error)

	// GetProperties fetches the canonical property record for a CID.
	GetProperties(ctx context.Context, cid int64) (*Properties, error)

	// Synonyms fetches synonym strings for a CID, capped at max entries.
	Synonyms(ctx context.Context, cid int64, max int) ([]string, error)
}

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type httpClient struct {
	baseURL string
	hc      *http.Client
	logger  logging.Logger
}

// NewClient builds a Client over net/http. The timeout is mandatory; a zero
// value falls back to 30 seconds.
func NewClient(cfg Config, logger logging.Logger) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("pubchem"),
	}
}

// CompoundURL returns the reference link for a CID.
func CompoundURL(cid int64) string {
	return fmt.Sprintf(compoundURLFormat, cid)
}

type cidList struct {
	IdentifierList struct {
		CID []int64 `json:"CID"`
	} `json:"IdentifierList"`
}

func (c *httpClient) CIDByName(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.InvalidParam("empty compound name")
	}

	u := fmt.Sprintf("%s/compound/name/%s/cids/JSON", c.baseURL, url.PathEscape(name))
	var out cidList
	if err := c.getJSON(ctx, u, &out); err != nil {
		return 0, err
	}
	if len(out.IdentifierList.CID) == 0 {
		return 0, errors.Newf(errors.ErrCodeNotFound, "compound %q not in PubChem", name)
	}
	return out.IdentifierList.CID[0], nil
}

// propertyRecord mirrors the PUG REST property table entry. MolecularWeight
// arrives as a JSON string in current API revisions.
type propertyRecord struct {
	CID              int64       `json:"CID"`
	MolecularFormula string      `json:"MolecularFormula"`
	MolecularWeight  json.Number `json:"MolecularWeight"`
	IUPACName        string      `json:"IUPACName"`
	InChIKey         string      `json:"InChIKey"`
	CanonicalSMILES  string      `json:"CanonicalSMILES"`
}

type propertyTable struct {
	PropertyTable struct {
		Properties []propertyRecord `json:"Properties"`
	} `json:"PropertyTable"`
}

func (c *httpClient) GetProperties(ctx context.Context, cid int64) (*Properties, error) {
	u := fmt.Sprintf(
		"%s/compound/cid/%d/property/MolecularFormula,MolecularWeight,IUPACName,InChIKey,CanonicalSMILES/JSON",
		c.baseURL, cid)

	var out propertyTable
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	if len(out.PropertyTable.Properties) == 0 {
		return nil, errors.Newf(errors.ErrCodeNotFound, "no property record for CID %d", cid)
	}

	rec := out.PropertyTable.Properties[0]
	weight, _ := rec.MolecularWeight.Float64()
	return &Properties{
		CID:              rec.CID,
		MolecularFormula: rec.MolecularFormula,
		MolecularWeight:  weight,
		IUPACName:        rec.IUPACName,
		InChIKey:         rec.InChIKey,
		CanonicalSMILES:  rec.CanonicalSMILES,
	}, nil
}

type synonymList struct {
	InformationList struct {
		Information []struct {
			CID     int64    `json:"CID"`
			Synonym []string `json:"Synonym"`
		} `json:"Information"`
	} `json:"InformationList"`
}

func (c *httpClient) Synonyms(ctx context.Context, cid int64, max int) ([]string, error) {
	u := fmt.Sprintf("%s/compound/cid/%d/synonyms/JSON", c.baseURL, cid)

	var out synonymList
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	if len(out.InformationList.Information) == 0 {
		return nil, errors.Newf(errors.ErrCodeNotFound, "no synonyms for CID %d", cid)
	}

	syns := out.InformationList.Information[0].Synonym
	if max > 0 && len(syns) > max {
		syns = syns[:max]
	}
	return syns, nil
}

// getJSON performs one GET and decodes the body. A 404 maps to CodeNotFound
// because PUG REST answers unknown identifiers that way; everything else
// that is not a 200 maps to CodeExternalService.
func (c *httpClient) getJSON(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "build PubChem request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(err, errors.ErrCodeTimeout, "PubChem request cancelled")
		}
		return errors.Wrap(err, errors.ErrCodeExternalService, "PubChem request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Newf(errors.ErrCodeNotFound, "PubChem has no record at %s", rawURL)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("PubChem non-OK response",
			logging.Int("status", resp.StatusCode),
			logging.String("url", rawURL),
		)
		return errors.Newf(errors.ErrCodeExternalService,
			"PubChem returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode PubChem response")
	}
	return nil
}

package portal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// noSpectrumSentinel is the literal body prefix the portal answers with when
// a source has no spectra on file. The status code is still 200.
const noSpectrumSentinel = "No spectrum"

// Client is the typed portal client. It owns an Executor and translates
// between Go values and the CGI form/JSON conventions of the Marshal.
type Client struct {
	exec *Executor
}

// Interface guard
var _ contract.PortalClient = (*Client)(nil)

// NewClient builds a portal client from a validated config.
func NewClient(cfg *contract.Config) *Client {
	return &Client{exec: NewExecutor(cfg)}
}

// ListPrograms returns the science programs the authenticated user belongs to.
func (c *Client) ListPrograms(ctx context.Context) ([]schema.Program, error) {
	var programs []schema.Program
	if err := c.exec.DoJSON(ctx, EndpointListPrograms, url.Values{}, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

// ListProgramSources returns the saved sources of a program, with redshift
// and classification columns included.
func (c *Client) ListProgramSources(ctx context.Context, programIdx int) ([]schema.Record, error) {
	form := url.Values{}
	form.Set("programidx", strconv.Itoa(programIdx))
	form.Set("getredshift", "1")
	form.Set("getclassification", "1")

	var sources []schema.Record
	if err := c.exec.DoJSON(ctx, EndpointListProgramSources, form, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// QueryCandidates returns the scanning-page candidates of a program for one
// time window.
func (c *Client) QueryCandidates(ctx context.Context, programIdx int, start, end time.Time, showSaved schema.ShowSaved) ([]schema.Record, error) {
	form := url.Values{}
	form.Set("programidx", strconv.Itoa(programIdx))
	form.Set("startdate", start.Format(contract.DateTimeFormat))
	form.Set("enddate", end.Format(contract.DateTimeFormat))
	form.Set("showsaved", string(showSaved))

	var candidates []schema.Record
	if err := c.exec.DoJSON(ctx, EndpointListCandidates, form, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// FetchLightcurve downloads and parses the photometry table of a source.
func (c *Client) FetchLightcurve(ctx context.Context, name string) (*schema.Lightcurve, error) {
	form := url.Values{}
	form.Set("name", name)

	body, err := c.exec.Do(ctx, EndpointPrintLightcurve, form)
	if err != nil {
		return nil, err
	}
	return ParseLightcurveHTML(name, body)
}

// SourceSummary returns the nested summary tree of a saved source.
func (c *Client) SourceSummary(ctx context.Context, sourceID string) (schema.Record, error) {
	form := url.Values{}
	form.Set("sourceid", sourceID)

	var summary schema.Record
	if err := c.exec.DoJSON(ctx, EndpointSourceSummary, form, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// PostComment adds a new annotation to a source.
func (c *Client) PostComment(ctx context.Context, name string, text string, kind schema.CommentType) error {
	form := commentForm(name, string(kind))
	form.Set("comment", text)
	_, err := c.exec.Do(ctx, EndpointEditComment, form)
	return err
}

// EditComment replaces the text and type of an existing annotation.
func (c *Client) EditComment(ctx context.Context, name string, commentID int64, text string, kind schema.CommentType) error {
	form := commentForm(name, string(kind))
	form.Set("comment", text)
	form.Set("id", strconv.FormatInt(commentID, 10))
	_, err := c.exec.Do(ctx, EndpointEditComment, form)
	return err
}

// DeleteComment removes an annotation from a source.
func (c *Client) DeleteComment(ctx context.Context, name string, commentID int64) error {
	form := commentForm(name, "delete")
	form.Set("id", strconv.FormatInt(commentID, 10))
	_, err := c.exec.Do(ctx, EndpointEditComment, form)
	return err
}

// IngestAvro requests ingestion of an alert-archive detection by its avro id.
func (c *Client) IngestAvro(ctx context.Context, avroID string, programID int) error {
	form := url.Values{}
	form.Set("avroid", avroID)
	form.Set("programidx", strconv.Itoa(programID))
	_, err := c.exec.Do(ctx, EndpointIngestAvroID, form)
	return err
}

// SaveCandidate saves a scanning-page candidate into a program.
func (c *Client) SaveCandidate(ctx context.Context, candID int64, programID int) error {
	form := url.Values{}
	form.Set("candid", strconv.FormatInt(candID, 10))
	form.Set("program", strconv.Itoa(programID))
	_, err := c.exec.Do(ctx, EndpointSaveCandidate, form)
	return err
}

// CheckSpectra reports whether the portal has at least one spectrum for the source.
func (c *Client) CheckSpectra(ctx context.Context, name string) (bool, error) {
	form := url.Values{}
	form.Set("name", name)

	var available bool
	err := c.exec.Stream(ctx, EndpointBatchSpec, form, func(r io.Reader) error {
		noSpec, err := hasNoSpectrumSentinel(bufio.NewReader(r))
		if err != nil {
			return err
		}
		available = !noSpec
		return nil
	})
	if err != nil {
		return false, err
	}
	return available, nil
}

// DownloadSpectra streams the spectra tarball of a source into w.
// Returns ErrNoSpectrum when the portal has nothing for the source.
func (c *Client) DownloadSpectra(ctx context.Context, name string, w io.Writer) error {
	form := url.Values{}
	form.Set("name", name)

	return c.exec.Stream(ctx, EndpointBatchSpec, form, func(r io.Reader) error {
		br := bufio.NewReader(r)
		noSpec, err := hasNoSpectrumSentinel(br)
		if err != nil {
			return err
		}
		if noSpec {
			return fmt.Errorf("%w: %s", ErrNoSpectrum, name)
		}
		if _, err := io.Copy(w, br); err != nil {
			return fmt.Errorf("failed to download spectra for %s: %w", name, err)
		}
		return nil
	})
}

// hasNoSpectrumSentinel peeks at the body to detect the "No spectrum" answer
// without consuming the stream.
func hasNoSpectrumSentinel(br *bufio.Reader) (bool, error) {
	prefix, err := br.Peek(len(noSpectrumSentinel))
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read spectra response: %w", err)
	}
	return strings.HasPrefix(string(prefix), noSpectrumSentinel), nil
}

// commentForm builds the shared form fields of every edit_comment.cgi action.
func commentForm(name, kind string) url.Values {
	form := url.Values{}
	form.Set("name", name)
	form.Set("tablename", "comments")
	form.Set("type", kind)
	form.Set("commit", "yes")
	return form
}

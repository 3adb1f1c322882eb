package vm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Record is one row of a temporal table: the spatial means of every
// column at one time step of a scenario.
type Record struct {
	Scenario string
	// Timestamp is in Unix milliseconds.
	Timestamp int64
	// Values are aligned with the client's columns; NaN is skipped.
	Values []float64
}

// Client is a Victoria Metrics client capable of inserting temporal
// records via various protocols.
type Client struct {
	logger       *slog.Logger
	httpCli      *http.Client
	insertURL    string
	metricPrefix string
	columns      []string
	recToText    recToTextFunc
}

const (
	metricPrefixRE = "^[a-zA-Z0-9]+$"
	columnRE       = "^[a-zA-Z0-9_]+$"
)

// NewClient creates a new VM client that inserts records with the given
// columns.
func NewClient(logger *slog.Logger, insertURL string, maxConns int, metricPrefix string, columns []string) (*Client, error) {
	url, err := url.Parse(insertURL)
	if err != nil {
		return nil, err
	}

	if !regexp.MustCompile(metricPrefixRE).MatchString(metricPrefix) {
		return nil, fmt.Errorf("metric prefix %q does not match %q regular expression", metricPrefix, metricPrefixRE)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns to insert")
	}
	colRE := regexp.MustCompile(columnRE)
	for _, c := range columns {
		if !colRE.MatchString(c) {
			return nil, fmt.Errorf("column %q does not match %q regular expression", c, columnRE)
		}
	}

	apiParams := apiParamsFuncs[url.Path]
	if apiParams == nil {
		return nil, fmt.Errorf("inserting into %q is not supported", insertURL)
	}
	q := url.Query()
	for name, value := range apiParams(metricPrefix, columns) {
		q.Add(name, value)
	}
	url.RawQuery = q.Encode()

	recToText := recToTextFuncs[url.Path]
	if recToText == nil {
		return nil, fmt.Errorf("inserting into %q is not supported", insertURL)
	}

	return &Client{
		logger: logger,
		httpCli: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        maxConns,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: maxConns,
				MaxConnsPerHost:     maxConns,
			},
		},
		insertURL:    url.String(),
		metricPrefix: metricPrefix,
		columns:      columns,
		recToText:    recToText,
	}, nil
}

// Insert inserts records into Victoria Metrics.
func (c *Client) Insert(ctx context.Context, recs []Record) error {
	body := recsToText(recs, c.metricPrefix, c.columns, c.recToText)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.insertURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	res, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("could not post data: %w", err)
	}
	defer res.Body.Close()
	if _, err := io.Copy(io.Discard, res.Body); err != nil {
		c.logger.Error("Failed to drain response body", "err", err)
	}
	if res.StatusCode != http.StatusNoContent && res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return nil
}

type apiParamsFunc func(string, []string) map[string]string

var apiParamsFuncs = map[string]apiParamsFunc{
	"/influx/write":        influxDBAPIParams,
	"/influx/api/v2/write": influxDBAPIParams,
	"/write":               influxDBAPIParams,
	"/api/v2/write":        influxDBAPIParams,
	"/api/v1/import/csv":   csvAPIParams,
}

func influxDBAPIParams(string, []string) map[string]string {
	return nil
}

func csvAPIParams(metricPrefix string, columns []string) map[string]string {
	var sb strings.Builder
	sb.WriteString("1:time:unix_ms,2:label:scenario")
	for i, c := range columns {
		fmt.Fprintf(&sb, ",%d:metric:%s_%s", i+3, metricPrefix, c)
	}
	return map[string]string{"format": sb.String()}
}

type recToTextFunc func(*bytes.Buffer, *Record, string, []string)

// recsToText converts multiple records to text.
func recsToText(recs []Record, metricPrefix string, columns []string, recToText recToTextFunc) io.Reader {
	var buf bytes.Buffer
	for _, r := range recs {
		recToText(&buf, &r, metricPrefix, columns)
	}
	return &buf
}

var recToTextFuncs = map[string]recToTextFunc{
	"/influx/write":        recToInfluxDB,
	"/influx/api/v2/write": recToInfluxDB,
	"/write":               recToInfluxDB,
	"/api/v2/write":        recToInfluxDB,
	"/api/v1/import/csv":   recToCSV,
}

// recToInfluxDB converts a record into InfluxDB line protocol with a
// nanosecond timestamp and appends it to the buffer. A record without
// finite values produces no line.
func recToInfluxDB(buf *bytes.Buffer, r *Record, metricPrefix string, columns []string) {
	var fields []string
	for i, c := range columns {
		if i >= len(r.Values) || math.IsNaN(r.Values[i]) || math.IsInf(r.Values[i], 0) {
			continue
		}
		fields = append(fields, c+"="+strconv.FormatFloat(r.Values[i], 'g', -1, 64))
	}
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(buf, "%s,scenario=%s %s %d\n", metricPrefix, r.Scenario, strings.Join(fields, ","), r.Timestamp*int64(time.Millisecond))
}

// recToCSV converts a record into a CSV record and appends it to the
// buffer. Missing values are left empty.
func recToCSV(buf *bytes.Buffer, r *Record, _ string, columns []string) {
	buf.WriteString(strconv.FormatInt(r.Timestamp, 10))
	buf.WriteString(",")
	buf.WriteString(r.Scenario)
	for i := range columns {
		buf.WriteString(",")
		if i < len(r.Values) && !math.IsNaN(r.Values[i]) {
			buf.WriteString(strconv.FormatFloat(r.Values[i], 'g', -1, 64))
		}
	}
	buf.WriteString("\n")
}

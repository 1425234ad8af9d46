package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/importer"
	"github.com/GTDGit/bakery_api/internal/metrics"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/sse"
	"github.com/GTDGit/bakery_api/internal/utils"
)

type settingsProvider interface {
	Get(ctx context.Context) (models.StoreSettings, error)
}

type productBatchWriter interface {
	CreateBatch(ctx context.Context, products []models.Product, job *models.ImportJob, event *models.OutboxEvent) error
}

type outboxDeliverer interface {
	DeliverByID(ctx context.Context, id string) error
}

// ImportInput is one uploaded product file.
type ImportInput struct {
	FileName string
	// Format overrides detection from the file extension when set.
	Format    importer.Format
	Body      io.Reader
	DryRun    bool
	CreatedBy string
}

// ImportResult reports what an import did. Errors holds one "Row N: ..."
// message per rejected row.
type ImportResult struct {
	JobID      string           `json:"jobId,omitempty"`
	Format     importer.Format  `json:"format"`
	DryRun     bool             `json:"dryRun"`
	Total      int              `json:"total"`
	Accepted   int              `json:"accepted"`
	Imported   int              `json:"imported"`
	Rejected   int              `json:"rejected"`
	Progress   float64          `json:"progress"`
	DurationMs int64            `json:"durationMs"`
	Errors     []string         `json:"errors"`
	ProductIDs []string         `json:"productIds"`
	Preview    []models.Product `json:"preview,omitempty"`
	Notified   bool             `json:"notified"`
}

// ImportService runs the bulk product import: parse, normalize and validate
// every row, then write the accepted rows and the fan-out intent in one
// transaction.
type ImportService struct {
	products productBatchWriter
	fanout   outboxDeliverer
	settings settingsProvider
	notifier sse.Notifier
	maxRows  int
	now      func() time.Time
}

func NewImportService(products productBatchWriter, fanout outboxDeliverer, settings settingsProvider, notifier sse.Notifier, cfg config.ImportConfig) *ImportService {
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &ImportService{
		products: products,
		fanout:   fanout,
		settings: settings,
		notifier: notifier,
		maxRows:  cfg.MaxRows,
		now:      time.Now,
	}
}

// Import runs the pipeline. A file that cannot be parsed fails the whole
// import with an *importer.Error; rejected rows do not. A failed commit
// returns a CommitFailure and nothing is saved. A failed fan-out after the
// commit is logged only; the outbox worker retries it.
func (s *ImportService) Import(ctx context.Context, in ImportInput) (*ImportResult, error) {
	stats := importer.Stats{StartTime: s.now()}

	format := in.Format
	if format == "" {
		f, err := importer.DetectFormat(in.FileName)
		if err != nil {
			return nil, err
		}
		format = f
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store settings: %w", err)
	}

	rows, err := importer.Parse(format, in.Body)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(string(format), "parse_failure").Inc()
		log.Warn().Err(err).Str("file", in.FileName).Str("format", string(format)).Msg("import rejected")
		return nil, err
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		metrics.ImportsTotal.WithLabelValues(string(format), "parse_failure").Inc()
		return nil, &importer.Error{
			Kind:    importer.InvalidFormat,
			Message: fmt.Sprintf("file has %d rows, at most %d can be imported at once", len(rows), s.maxRows),
		}
	}

	valid, rowErrs := importer.Validate(rows, importer.Defaults{Currency: settings.Currency})
	stats.Total = len(rows)
	stats.Accepted = len(valid)
	stats.Rejected = len(rowErrs)
	metrics.ImportRowsTotal.WithLabelValues("accepted").Add(float64(stats.Accepted))
	metrics.ImportRowsTotal.WithLabelValues("rejected").Add(float64(stats.Rejected))

	res := &ImportResult{
		Format:     format,
		DryRun:     in.DryRun,
		Total:      stats.Total,
		Accepted:   stats.Accepted,
		Rejected:   stats.Rejected,
		Errors:     nonNil(rowErrs),
		ProductIDs: []string{},
	}

	if in.DryRun || len(valid) == 0 {
		outcome := "no_valid_rows"
		if in.DryRun {
			outcome = "dry_run"
			res.Preview = valid
		}
		s.finish(&stats, res, format, outcome, in.FileName)
		return res, nil
	}

	jobID := utils.NewID()
	for i := range valid {
		valid[i].ID = utils.NewID()
		valid[i].ImportJobID = &jobID
		res.ProductIDs = append(res.ProductIDs, valid[i].ID)
	}

	job := &models.ImportJob{
		ID:        jobID,
		FileName:  in.FileName,
		Format:    string(format),
		TotalRows: stats.Total,
		Imported:  len(valid),
		Rejected:  stats.Rejected,
		Errors:    nonNil(rowErrs),
		CreatedBy: in.CreatedBy,
	}

	payload, err := json.Marshal(models.ProductsImportedPayload{
		ImportJobID: jobID,
		Count:       len(valid),
		ProductIDs:  res.ProductIDs,
	})
	if err != nil {
		return nil, err
	}
	event := &models.OutboxEvent{
		ID:            utils.NewID(),
		Kind:          models.OutboxProductsImported,
		Payload:       payload,
		Status:        models.OutboxPending,
		NextAttemptAt: s.now(),
	}

	if err := s.products.CreateBatch(ctx, valid, job, event); err != nil {
		metrics.ImportsTotal.WithLabelValues(string(format), "commit_failure").Inc()
		log.Error().Err(err).Str("file", in.FileName).Int("rows", len(valid)).Msg("import commit failed")
		return nil, &importer.Error{
			Kind:    importer.CommitFailure,
			Message: "import failed, no products were saved",
			Err:     err,
		}
	}

	res.JobID = jobID
	res.Imported = len(valid)
	s.finish(&stats, res, format, "committed", in.FileName)
	s.notifier.NotifyProductsImported(jobID, len(valid))

	if err := s.fanout.DeliverByID(ctx, event.ID); err != nil {
		nerr := &importer.Error{Kind: importer.NotificationFailure, Message: "new product notifications delayed", Err: err}
		log.Error().Err(nerr).Str("job_id", jobID).Str("event_id", event.ID).Msg("import fan-out failed, left for retry")
	} else {
		res.Notified = true
	}
	return res, nil
}

func (s *ImportService) finish(stats *importer.Stats, res *ImportResult, format importer.Format, outcome, file string) {
	stats.EndTime = s.now()
	res.Progress = stats.Progress()
	res.DurationMs = stats.Duration().Milliseconds()

	metrics.ImportsTotal.WithLabelValues(string(format), outcome).Inc()
	metrics.ImportDuration.Observe(stats.Duration().Seconds())
	log.Info().
		Str("file", file).
		Str("format", string(format)).
		Str("outcome", outcome).
		Int("rows", stats.Total).
		Int("imported", res.Imported).
		Int("rejected", stats.Rejected).
		Dur("duration", stats.Duration()).
		Msg("product import finished")
}

// Template writes the sample import file for format.
func (s *ImportService) Template(format importer.Format, w io.Writer) error {
	return importer.Template(format, w)
}

package service

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/smart-extract/internal/batch"
	"github.com/phrazzld/smart-extract/internal/config"
	"github.com/phrazzld/smart-extract/internal/domain"
	"github.com/phrazzld/smart-extract/internal/note"
)

// Options collects the settings of every service.
type Options struct {
	Extract    ExtractOptions
	SkipTagged bool
	Metadata   MetadataOptions
	Rewrite    RewriteOptions
}

// OptionsFromConfig maps the loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Extract: ExtractOptions{
			Style: note.Style{
				BacklinkStyle:    cfg.Notes.BacklinkStyle,
				QuoteCallout:     cfg.Notes.QuoteCallout,
				QuoteCollapsible: cfg.Notes.QuoteCollapsible,
				TargetFolder:     cfg.Vault.TargetFolder,
			},
			AddBacklinks: cfg.Notes.AddBacklinks,
		},
		SkipTagged: cfg.Notes.SkipExistingTags,
		Metadata: MetadataOptions{
			MetadataOptions: note.MetadataOptions{
				Fields:           cfg.Metadata.DomainFields(),
				DateFormat:       cfg.Metadata.DateFormat,
				IncludeTimestamp: cfg.Metadata.IncludeTimestamp,
			},
			SkipExisting: cfg.Metadata.SkipExisting,
		},
		Rewrite: RewriteOptions{
			TargetFolder: cfg.Vault.TargetFolder,
			Suffix:       cfg.Rewrite.Suffix,
			CreateBackup: cfg.Rewrite.CreateBackup,
		},
	}
}

// Services bundles the use cases over one vault and analyzer.
type Services struct {
	Extract  *ExtractService
	Tags     *TagService
	Metadata *MetadataService
	Rewrite  *RewriteService
	Summary  *SummaryService
}

// New creates every service.
func New(notes Notes, analyzer Analyzer, opts Options, logger *slog.Logger) *Services {
	return &Services{
		Extract:  NewExtractService(notes, analyzer, opts.Extract, logger),
		Tags:     NewTagService(notes, analyzer, opts.SkipTagged, logger),
		Metadata: NewMetadataService(notes, analyzer, opts.Metadata, logger),
		Rewrite:  NewRewriteService(notes, analyzer, opts.Rewrite, logger),
		Summary:  NewSummaryService(notes, analyzer, logger),
	}
}

// ProcessFunc returns the per-file handler the batch driver runs for op.
func (s *Services) ProcessFunc(op domain.Operation) (batch.ProcessFunc, error) {
	switch op {
	case domain.OperationTag:
		return s.Tags.ProcessFile, nil
	case domain.OperationMetadata:
		return s.Metadata.ProcessFile, nil
	case domain.OperationRewrite:
		return s.Rewrite.ProcessFile, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
	}
}

// Package resolve runs the full load, normalize, index and validate pipeline
// for a site document and records the outcome.
package resolve

import (
	"git.home.luguber.info/inful/sitecfg/internal/site"
	"git.home.luguber.info/inful/sitecfg/internal/site/normalize"
	"git.home.luguber.info/inful/sitecfg/internal/site/validation"
)

// Certify normalizes raw and validates the result against index. It performs
// no I/O. On failure the error is a *site.NormalizationError or a
// *site.ValidationError and no configuration is returned.
func Certify(raw any, index validation.ContentIndex, opts normalize.Options) (*site.SiteConfig, *normalize.Result, error) {
	cfg, res, err := normalize.Normalize(raw, opts)
	if err != nil {
		return nil, res, err
	}
	if err := validation.Validate(cfg, index); err != nil {
		return nil, res, err
	}
	return cfg, res, nil
}

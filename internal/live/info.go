package live

import (
	"context"

	"github.com/gabrielmiguelok/pakheritage/pkg/core"
	"github.com/gabrielmiguelok/pakheritage/pkg/logging"
)

// Timer messages. Each carries the generation it was scheduled for; a
// message whose generation is no longer current is dropped.
type (
	contactDeliver  struct{ gen uint64 }
	contactReset    struct{ gen uint64 }
	newsletterReset struct{ gen uint64 }
)

// HandleInfo handles the page's own timer messages.
func (p *Page) HandleInfo(ctx context.Context, msg any) error {
	switch m := msg.(type) {
	case contactDeliver:
		return p.deliverContact(ctx, m.gen)

	case contactReset:
		if !p.form.ResetStatus(m.gen) {
			return core.ErrNoChange
		}
		return nil

	case newsletterReset:
		if !p.signup.Reset(m.gen) {
			return core.ErrNoChange
		}
		return nil

	default:
		logging.L(ctx).Debug("unexpected info message", logging.Any("msg", msg))
		return core.ErrNoChange
	}
}

func (p *Page) deliverContact(ctx context.Context, gen uint64) error {
	if gen != p.form.Generation() {
		return core.ErrNoChange
	}

	fields := p.form.Pending()
	sub, err := p.deps.Submitter.Submit(ctx, fields)
	if !p.form.Complete(gen, err) {
		return core.ErrNoChange
	}
	if err != nil {
		p.deps.Metrics.ContactSubmitted("failed")
		p.log.Warn("contact submission failed", logging.Err(err))
	} else {
		p.deps.Metrics.ContactSubmitted("sent")
		p.log.Info("contact submission accepted",
			logging.String("submission_id", sub.ID),
			logging.String("subject", fields.Subject),
		)
	}

	if _, err := p.SendAfter(p.deps.Timings.ContactBanner, contactReset{gen: gen}); err != nil {
		p.log.Debug("banner reset not scheduled", logging.Err(err))
	}
	return nil
}

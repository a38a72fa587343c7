package content

import (
	"context"

	"github.com/Modenjaya/og-upload/pkg/types"
)

// Producer runs acquisition and dedup once per call.
type Producer struct {
	acquirer Acquirer
	deduper  *Deduper
}

func NewProducer(acquirer Acquirer, deduper *Deduper) *Producer {
	return &Producer{acquirer: acquirer, deduper: deduper}
}

func (p *Producer) Produce(ctx context.Context) (types.ContentDescriptor, error) {
	buf, err := p.acquirer.Acquire(ctx)
	if err != nil {
		return types.ContentDescriptor{}, err
	}
	return p.deduper.MakeDescriptor(ctx, buf, p.acquirer.Acquire)
}

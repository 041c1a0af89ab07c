package relay

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rawblock/nostrdizer/internal/errs"
)

// waitAny blocks on a dynamic set of delivery channels plus ctx.Done(),
// since Go's select statement cannot range over a slice of channels.
func waitAny(ctx context.Context, chans []chan Delivery) (Delivery, error) {
	cases := make([]reflect.SelectCase, 0, len(chans)+1)
	for _, ch := range chans {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ch)})
	}
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})

	chosen, value, ok := reflect.Select(cases)
	if chosen == len(cases)-1 || !ok {
		return Delivery{}, fmt.Errorf("%w: %v", errs.ErrTransport, ctx.Err())
	}
	return value.Interface().(Delivery), nil
}

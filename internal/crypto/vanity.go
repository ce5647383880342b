package crypto

import (
	"context"
	"errors"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidVanitySuffix is returned when a vanity suffix contains characters
// outside the base32 address alphabet.
var ErrInvalidVanitySuffix = errors.New("vanity suffix contains invalid base32 characters")

const addressAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// FindVanity searches random keypairs until one is found whose address ends
// with the given suffix. Workers run in parallel; zero or negative means one
// per CPU. The search honours context cancellation.
//
// Matching is done on the address suffix because the leading characters of an
// account address are fixed by the version byte, so arbitrary prefixes may be
// unreachable.
func FindVanity(ctx context.Context, suffix string, workers int) (*KeyPair, error) {
	suffix = strings.ToUpper(suffix)
	for _, c := range suffix {
		if !strings.ContainsRune(addressAlphabet, c) {
			return nil, ErrInvalidVanitySuffix
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan *KeyPair, 1)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				kp, err := Random()
				if err != nil {
					return err
				}
				if strings.HasSuffix(kp.Address(), suffix) {
					select {
					case found <- kp:
						cancel()
					default:
						kp.Destroy()
					}
					return nil
				}
				kp.Destroy()
			}
		})
	}

	err := g.Wait()
	select {
	case kp := <-found:
		return kp, nil
	default:
		return nil, err
	}
}

package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"bertraco/app/service/dispatch"

	"github.com/samber/do"
)

type Submitter interface {
	Submit(question string) bool
}

// Service reads one question per line.
type Service struct {
	in        io.Reader
	submitter Submitter
}

func New(di *do.Injector) (*Service, error) {
	return NewService(os.Stdin, do.MustInvoke[*dispatch.Service](di)), nil
}

func NewService(in io.Reader, submitter Submitter) *Service {
	return &Service{
		in:        in,
		submitter: submitter,
	}
}

// Run returns at the end of input or once ctx is done. A pending read is abandoned in the latter case.
func (s *Service) Run(ctx context.Context) error {
	lines := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				slog.Info("Console input closed")
				select {
				case err := <-errs:
					return err
				default:
					return nil
				}
			}

			s.submitter.Submit(line)
		}
	}
}

package datastore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/louisbranch/datastore/internal/cache"
	apperrors "github.com/louisbranch/datastore/internal/platform/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"google.golang.org/grpc/status"
)

const usage = "commands: put <key> [value], get <key>, contains <key>, size, keys, flush, stats, quit"

// maxLineBytes bounds a single command line, and with it the largest value
// a put can carry.
const maxLineBytes = 64 << 20

// session executes line commands against one cache. Only the serve loop
// touches the cache.
type session struct {
	cache   *cache.Cache
	out     io.Writer
	printer *message.Printer
}

func newSession(c *cache.Cache, out io.Writer, tag language.Tag) *session {
	return &session{
		cache:   c,
		out:     out,
		printer: message.NewPrinter(tag),
	}
}

// serve reads commands until EOF, quit, or ctx cancellation.
//
// Reads happen on a separate goroutine so cancellation is observed while
// input is idle. That goroutine exits only once a Read on in returns, so a
// caller that cancels ctx must also close in (or let it reach EOF) to
// release it.
func (s *session) serve(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		defer func() {
			scanErr <- scanner.Err()
			close(lines)
		}()
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("read commands: %w", err)
				}
				return nil
			}
			if quit := s.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (s *session) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	command, rest := cut(line)
	key, value := cut(rest)

	switch strings.ToLower(command) {
	case "put", "set":
		if key == "" {
			s.reply("ERR put requires a key")
			return false
		}
		if err := s.cache.Put(ctx, key, value); err != nil {
			log.Printf("put %s: %v", key, err)
			s.replyError(err)
			return false
		}
		s.reply("OK")
	case "get":
		if key == "" {
			s.reply("ERR get requires a key")
			return false
		}
		got, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("get %s: %v", key, err)
		}
		switch {
		case ok:
			s.reply("%s", got)
		case err != nil:
			s.replyError(err)
		default:
			s.reply("(not found)")
		}
	case "contains":
		s.reply("%t", s.cache.Contains(key))
	case "size":
		s.reply("%d/%d", s.cache.Size(), s.cache.Capacity())
	case "keys":
		s.reply("%s", strings.Join(s.cache.Keys(), " "))
	case "flush":
		if err := s.cache.Flush(ctx); err != nil {
			log.Printf("flush: %v", err)
			s.replyError(err)
			return false
		}
		s.reply("OK")
	case "stats":
		s.writeStats()
	case "help":
		s.reply(usage)
	case "quit", "exit":
		return true
	default:
		s.reply("ERR unknown command %q; %s", command, usage)
	}
	return false
}

func (s *session) writeStats() {
	stats := s.cache.Stats()
	s.printer.Fprintf(s.out,
		"hits=%d misses=%d hit_ratio=%.1f%% loads=%d load_failures=%d evictions=%d write_backs=%d write_back_failures=%d flushes=%d dirty=%d\n",
		stats.Hits,
		stats.Misses,
		stats.HitRatio()*100,
		stats.Loads,
		stats.LoadFailures,
		stats.Evictions,
		stats.WriteBacks,
		stats.WriteBackFailures,
		stats.Flushes,
		s.cache.Dirty(),
	)
}

func (s *session) reply(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

// replyError writes a cache error with its domain code and gRPC status code,
// e.g. "ERR SAVE_FAILURE (DataLoss): write back evicted key: ...".
func (s *session) replyError(err error) {
	st := status.Convert(apperrors.HandleError(err))
	s.reply("ERR %s (%s): %v", apperrors.GetCode(err), st.Code(), err)
}

// cut splits off the first word, delimited by a space or tab. The remainder
// keeps its inner spacing so values may contain spaces.
func cut(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

package closer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

const defaultForcedWindow = 2 * time.Second

// Func закрывает один ресурс.
type Func func(ctx context.Context) error

type step struct {
	name string
	fn   Func
}

// Closer останавливает ресурсы сервиса в порядке, обратном регистрации.
type Closer struct {
	mu    sync.Mutex
	steps []step

	once   sync.Once
	result error

	// сколько даётся ресурсам, не успевшим закрыться до истечения контекста Close
	forcedWindow time.Duration
}

func NewCloser(forcedWindow time.Duration) *Closer {
	if forcedWindow <= 0 {
		forcedWindow = defaultForcedWindow
	}

	return &Closer{forcedWindow: forcedWindow}
}

// Add регистрирует ресурс. name попадает в текст ошибки.
func (c *Closer) Add(name string, fn Func) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.steps = append(c.steps, step{name: name, fn: fn})
}

// Close закрывает ресурсы по одному, начиная с последнего.
// Если ctx истёк, оставшиеся ресурсы закрываются параллельно в окне forcedWindow.
// Повторный вызов возвращает результат первого.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.result = c.close(ctx)
	})

	return c.result
}

func (c *Closer) close(ctx context.Context) error {
	c.mu.Lock()
	steps := slices.Clone(c.steps)
	c.mu.Unlock()
	slices.Reverse(steps)

	var failures []string
	for i, s := range steps {
		finished, err := run(ctx, s)
		if !finished {
			failures = append(failures, c.force(steps[i:])...)
			return fmt.Errorf("shutdown interrupted after %d/%d funcs:\n%s", i, len(steps), strings.Join(failures, "\n"))
		}

		if err != nil {
			failures = append(failures, fmt.Sprintf("[!] %s: %v", s.name, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(failures, "\n"))
	}

	return nil
}

// run ждёт закрытия ресурса, пока жив ctx. finished=false, если ctx истёк раньше.
func run(ctx context.Context, s step) (finished bool, err error) {
	done := make(chan error, 1)
	go func() {
		done <- s.fn(ctx)
	}()

	select {
	case err := <-done:
		return true, err
	case <-ctx.Done():
		return false, nil
	}
}

// force запускает оставшиеся ресурсы одновременно с собственным таймаутом.
func (c *Closer) force(steps []step) []string {
	ctx, cancel := context.WithTimeout(context.Background(), c.forcedWindow)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	for _, s := range steps {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := s.fn(ctx); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("[FORCED] %s: %v", s.name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return failures
}

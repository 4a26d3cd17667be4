// Package jitter вычисляет интервалы повторных попыток с экспоненциальным ростом и случайной добавкой,
// чтобы одновременные клиенты не повторяли запросы синхронно.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает d со случайной добавкой в диапазоне [d, d*(1+jitterFactor)].
// При jitterFactor <= 0 возвращает d без изменений.
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return d
	}

	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// Backoff описывает политику задержек между попытками.
type Backoff struct {
	Base   time.Duration // задержка перед второй попыткой
	Max    time.Duration // верхняя граница, 0 — без ограничения
	Factor float64       // коэффициент джиттера
}

// Delay возвращает задержку после неудачной попытки attempt (нумерация с нуля):
// Base * 2^attempt, ограниченную Max, с применённым джиттером.
func (b Backoff) Delay(attempt int) time.Duration {
	return ExponentialBackoff(b.Base, b.Max, attempt, b.Factor)
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// base — начальная длительность, max — максимальная (0 — без ограничения),
// attempt — номер попытки (с нуля), jitterFactor — коэффициент джиттера.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if max > 0 && backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

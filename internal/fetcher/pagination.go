package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Pagineringen er modellert som en eksplisitt tilstandsmaskin med to
// tilstander, slik at termineringen er et uttalt predikat per idiom og
// ikke en bieffekt av løkkeavbrudd.
type pageState int

const (
	stateFetching pageState = iota
	stateDone
)

// Pausene i offset-paginering er en statisk høflighetspolicy mot APIet,
// uavhengig av rate limit-headere. Variabler slik at tester kan krympe dem.
var (
	PageDelay     = 1 * time.Second
	CourtesyDelay = 10 * time.Second
)

const courtesyEvery = 100

// CursorPage er én side fra et cursor-paginert API.
type CursorPage[T any] struct {
	Nodes       []T
	HasNextPage bool
	EndCursor   string
}

// FetchAllCursorPages driver fetch til kilden melder hasNextPage=false,
// og sender endCursor fra forrige side videre i neste kall. Ved ErrNoResult
// midt i pagineringen stopper vi og returnerer det som er samlet opp så
// langt – delresultater skal frem, ikke kastes.
func FetchAllCursorPages[T any](ctx context.Context, fetch func(ctx context.Context, cursor string) (CursorPage[T], error)) ([]T, error) {
	var all []T
	cursor := ""

	state := stateFetching
	for state == stateFetching {
		page, err := fetch(ctx, cursor)
		if err != nil {
			if errors.Is(err, ErrNoResult) {
				slog.Warn("Paginering stoppet før slutten, beholder delresultat", "antall", len(all))
				return all, nil
			}
			return all, err
		}

		all = append(all, page.Nodes...)
		slog.Info("Hentet side", "antall", len(page.Nodes), "hasNextPage", page.HasNextPage)

		if page.HasNextPage {
			cursor = page.EndCursor
		} else {
			state = stateDone
		}
	}
	return all, nil
}

// FetchAllPages driver fetch med økende sidenummer til en tom side kommer
// tilbake – dette APIet har ikke noe eget "flere sider"-flagg. Mellom
// sidene ventes PageDelay, og for hvert hundrede oppsamlede element
// CourtesyDelay i tillegg.
func FetchAllPages[T any](ctx context.Context, fetch func(ctx context.Context, page int) ([]T, error)) ([]T, error) {
	var all []T

	state := stateFetching
	for page := 1; state == stateFetching; page++ {
		items, err := fetch(ctx, page)
		if err != nil {
			if errors.Is(err, ErrNoResult) {
				slog.Warn("Paginering stoppet før slutten, beholder delresultat", "antall", len(all))
				return all, nil
			}
			return all, err
		}

		if len(items) == 0 {
			state = stateDone
			continue
		}

		all = append(all, items...)
		if len(all)%courtesyEvery == 0 {
			slog.Info("Høflighetspause etter 100 elementer", "antall", len(all))
			time.Sleep(CourtesyDelay)
		}
		time.Sleep(PageDelay)
	}
	return all, nil
}

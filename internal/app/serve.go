package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"reminders/internal/bot"
	"reminders/internal/logger"
	"reminders/internal/repository"
	"reminders/internal/service"
)

const (
	jobTimeout = 30 * time.Second
	recoverAt  = "00:05"
)

// Serve runs the HTTP API, the Telegram bot when a token is configured and
// the scheduled digest and recovery jobs. It blocks until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var notifier service.Notifier = logNotifier{log: logger.Component(a.Log, "digest")}
	var wg sync.WaitGroup

	if token := a.Config.Telegram.Token; token != "" {
		telegramBot, err := bot.New(
			token,
			a.Config.Telegram.ChatID,
			a.Tasks,
			a.Reminders,
			repository.NewChatRepository(a.db),
			a.Loc,
			logger.Component(a.Log, "bot"),
		)
		if err != nil {
			return err
		}
		notifier = telegramBot

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.Log.Error().Err(err).Msg("bot stopped with error")
			}
		}()
	} else {
		a.Log.Info().Msg("telegram token not set, bot disabled")
	}

	scheduler, err := a.newScheduler(notifier)
	if err != nil {
		return err
	}
	scheduler.Run("recover", a.recoverJob)
	scheduler.Start()
	defer scheduler.Stop()

	err = a.serveHTTP(ctx)
	cancel()
	wg.Wait()
	a.Log.Info().Msg("shutdown complete")
	return err
}

func (a *App) newScheduler(notifier service.Notifier) (*service.SchedulerService, error) {
	scheduler := service.NewSchedulerService(a.Loc, jobTimeout, logger.Component(a.Log, "scheduler"))

	digest := func(ctx context.Context, now time.Time) error {
		return a.Reminders.SendDigest(ctx, notifier, now)
	}

	if _, err := scheduler.ScheduleDaily("recover", recoverAt, a.recoverJob); err != nil {
		return nil, err
	}
	if dailyAt := a.Config.Notify.DailyAt; dailyAt != "" {
		if _, err := scheduler.ScheduleDaily("daily digest", dailyAt, digest); err != nil {
			return nil, err
		}
	}
	if interval := a.Config.ReportInterval(); interval > 0 {
		if _, err := scheduler.ScheduleInterval("interval digest", interval, digest); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

func (a *App) recoverJob(ctx context.Context, now time.Time) error {
	created, err := a.Tasks.RecoverMissingOccurrences(ctx, now)
	if err != nil {
		return err
	}
	if len(created) > 0 {
		a.Log.Info().Int("created", len(created)).Msg("recovered missing occurrences")
	}
	return nil
}

// logNotifier writes digests to the log when no chat surface is configured.
type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) Notify(_ context.Context, d service.Digest) error {
	n.log.Info().
		Int("badge", d.Badge).
		Strs("top", d.Summary.TopItemTitles).
		Strs("habits", d.OpenHabits).
		Msg("digest")
	return nil
}

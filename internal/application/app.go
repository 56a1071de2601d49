package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Aliiiqbp/OverUnder/internal/domain"
	"github.com/Aliiiqbp/OverUnder/internal/domain/model"
	"github.com/Aliiiqbp/OverUnder/internal/usecase"
)

// App composes the use cases into the operations a front end needs and owns
// the single State instance. Front ends render App.Snapshot() after each call.
type App struct {
	users    usecase.UserUseCase
	sessions usecase.SessionUseCase
	chat     usecase.ConversationUseCase
	commit   *usecase.Committer
	state    *usecase.State
	log      *zerolog.Logger
}

func NewApp(
	users usecase.UserUseCase,
	sessions usecase.SessionUseCase,
	chat usecase.ConversationUseCase,
	commit *usecase.Committer,
	logger *zerolog.Logger,
) *App {
	return &App{
		users:    users,
		sessions: sessions,
		chat:     chat,
		commit:   commit,
		state:    usecase.NewState(),
		log:      logger,
	}
}

func (a *App) Snapshot() usecase.Snapshot { return a.state.Snapshot() }

// Login stores the user record and loads (or creates) their sessions.
func (a *App) Login(ctx context.Context, name, email string) (*model.User, error) {
	u, err := a.users.Login(ctx, name, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := a.open(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Restore resumes the stored user, if any. domain.ErrNotLoggedIn means the
// front end should show the login form.
func (a *App) Restore(ctx context.Context) (*model.User, error) {
	u, err := a.users.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.open(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (a *App) open(ctx context.Context, u *model.User) error {
	a.chat.ForgetAll()
	a.state.SetUser(u)
	sessions, active, err := a.sessions.LoadOrCreate(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	a.state.Load(sessions, active.ID)
	a.log.Info().Str("user_id", u.ID).Int("sessions", len(sessions)).Str("active", active.ID).Msg("sessions loaded")
	return nil
}

// Logout forgets the user. Their sessions stay in the store.
func (a *App) Logout(ctx context.Context) error {
	if err := a.users.Logout(ctx); err != nil {
		return err
	}
	a.chat.ForgetAll()
	a.state.Clear()
	return nil
}

// NewAnalysis starts a new seeded session and makes it active.
func (a *App) NewAnalysis(ctx context.Context) (*model.ChatSession, error) {
	u := a.state.User()
	if u == nil {
		return nil, domain.ErrNotLoggedIn
	}
	s := a.sessions.NewSeeded(u.ID)
	a.state.Prepend(s)
	a.commit.Commit(ctx, a.state, s)
	return s, nil
}

func (a *App) Select(id string) error {
	if a.state.User() == nil {
		return domain.ErrNotLoggedIn
	}
	if !a.state.Select(id) {
		return fmt.Errorf("select session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a session. When it was the active one the next most recent
// session is selected, or a new one is synthesised if none remain.
func (a *App) Delete(ctx context.Context, id string) error {
	u := a.state.User()
	if u == nil {
		return domain.ErrNotLoggedIn
	}
	if _, ok := a.state.Session(id); !ok {
		return fmt.Errorf("delete session %s: %w", id, domain.ErrNotFound)
	}
	a.state.Remove(id)
	a.chat.Forget(id)
	a.commit.Delete(ctx, a.state, u.ID, id)

	if a.state.ActiveID() == "" {
		if _, err := a.NewAnalysis(ctx); err != nil && !errors.Is(err, domain.ErrNotLoggedIn) {
			return err
		}
	}
	return nil
}

// Send runs one exchange on the active session.
func (a *App) Send(ctx context.Context, text string) usecase.Outcome {
	return a.chat.Send(ctx, a.state, text)
}

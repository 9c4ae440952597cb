package oauth

import (
	"context"
	"crypto/subtle"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/config"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidState     = errors.New("invalid oauth state")
	ErrEmailNotVerified = errors.New("google account email is not verified")
)

// Provider is an OAuth identity provider that yields a Google profile.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.GoogleProfile, error)
}

// ProfileFetcher loads the signed-in user's profile with an access token.
type ProfileFetcher interface {
	Fetch(ctx context.Context, ts oauth2.TokenSource) (*models.GoogleProfile, error)
}

type GoogleProvider struct {
	config  *oauth2.Config
	fetcher ProfileFetcher
}

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
		},
		fetcher: userinfoFetcher{},
	}
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the callback code for a token and returns the verified
// profile behind it.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange oauth code")
	}
	profile, err := g.fetcher.Fetch(ctx, g.config.TokenSource(ctx, token))
	if err != nil {
		return nil, err
	}
	if !profile.EmailVerified || profile.Email == "" {
		return nil, ErrEmailNotVerified
	}
	return profile, nil
}

type userinfoFetcher struct{}

func (userinfoFetcher) Fetch(ctx context.Context, ts oauth2.TokenSource) (*models.GoogleProfile, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, errors.Wrap(err, "create userinfo client")
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(err, "fetch google profile")
	}
	return &models.GoogleProfile{
		Subject:       info.Id,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

// States signs and checks the state parameter. The nonce is also kept in the
// caller's session so a state minted for one browser cannot finish a login
// in another.
type States struct {
	secret string
}

func NewStates(secret string) *States {
	return &States{secret: secret}
}

func (s *States) New() (state, nonce string, err error) {
	nonce = utils.RandomHex(16)
	state, err = utils.GenerateStateToken(nonce, s.secret)
	if err != nil {
		return "", "", errors.Wrap(err, "sign oauth state")
	}
	return state, nonce, nil
}

func (s *States) Verify(state, expectedNonce string) error {
	if state == "" || expectedNonce == "" {
		return ErrInvalidState
	}
	nonce, err := utils.ValidateStateToken(state, s.secret)
	if err != nil {
		return errors.Wrap(ErrInvalidState, err.Error())
	}
	if subtle.ConstantTimeCompare([]byte(nonce), []byte(expectedNonce)) != 1 {
		return ErrInvalidState
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/scribely/content-api/configs"
	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/transfer"
	"github.com/scribely/content-api/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/linkedin"
)

const graphAPIBase = "https://graph.facebook.com/v21.0"

type ConnectionService interface {
	GetAuthURL(ctx context.Context, platform, tokenString string) string
	OAuthCallback(ctx context.Context, userID int64, platform, code string) (int64, error)
	ConnectManual(ctx context.Context, userID int64, req *transfer.ManualConnectRequest) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.SocialConnection, error)
	Remove(ctx context.Context, userID, connectionID int64) error
}

type connectionService struct {
	cfg config.Config
	cr  repository.ConnectionRepository
}

func NewConnectionService(cfg config.Config, cr repository.ConnectionRepository) ConnectionService {
	return &connectionService{
		cfg: cfg,
		cr:  cr,
	}
}

func (s *connectionService) oauthConfig(platform string) *oauth2.Config {
	switch platform {
	case models.PlatformFacebook:
		return &oauth2.Config{
			ClientID:     s.cfg.FacebookClientID,
			ClientSecret: s.cfg.FacebookClientSecret,
			RedirectURL:  s.cfg.FacebookRedirectURI,
			Scopes:       []string{"pages_show_list", "pages_manage_posts", "pages_read_engagement"},
			Endpoint:     facebook.Endpoint,
		}
	case models.PlatformLinkedin:
		return &oauth2.Config{
			ClientID:     s.cfg.LinkedinClientID,
			ClientSecret: s.cfg.LinkedinClientSecret,
			RedirectURL:  s.cfg.LinkedinRedirectURI,
			Scopes:       []string{"openid", "profile", "email", "w_member_social"},
			Endpoint:     linkedin.Endpoint,
		}
	default:
		return nil
	}
}

func (s *connectionService) GetAuthURL(ctx context.Context, platform, tokenString string) string {
	oauthCfg := s.oauthConfig(platform)
	if oauthCfg == nil {
		return ""
	}
	return oauthCfg.AuthCodeURL(tokenString)
}

// OAuthCallback finishes the provider handshake and stores an encrypted
// credential blob in the shape the matching adapter reads.
func (s *connectionService) OAuthCallback(ctx context.Context, userID int64, platform, code string) (int64, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	oauthCfg := s.oauthConfig(platform)
	if oauthCfg == nil {
		return 0, fmt.Errorf("platform %q does not support OAuth linking", platform)
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	client := oauthCfg.Client(ctx, token)

	switch platform {
	case models.PlatformFacebook:
		return s.connectFacebook(ctx, userID, client, token)
	case models.PlatformLinkedin:
		return s.connectLinkedin(ctx, userID, client, token)
	default:
		return 0, fmt.Errorf("platform %q does not support OAuth linking", platform)
	}
}

// connectFacebook picks the first managed page and stores its page token,
// which is what the publish endpoint requires.
func (s *connectionService) connectFacebook(ctx context.Context, userID int64, client *http.Client, token *oauth2.Token) (int64, error) {
	var pages transfer.FacebookPagesResponse
	if err := getInto(client, graphAPIBase+"/me/accounts", &pages); err != nil {
		return 0, err
	}
	if len(pages.Data) == 0 {
		return 0, errors.New("the Facebook account manages no pages")
	}

	page := pages.Data[0]
	credentials := map[string]string{
		"page_id":      page.ID,
		"access_token": page.AccessToken,
	}

	return s.store(ctx, userID, models.PlatformFacebook, page.Name, credentials, token.Expiry)
}

func (s *connectionService) connectLinkedin(ctx context.Context, userID int64, client *http.Client, token *oauth2.Token) (int64, error) {
	var userInfo transfer.LinkedinUserInfo
	if err := getInto(client, "https://api.linkedin.com/v2/userinfo", &userInfo); err != nil {
		return 0, err
	}

	credentials := map[string]string{
		"access_token": token.AccessToken,
		"person_urn":   fmt.Sprintf("urn:li:person:%s", userInfo.Sub),
	}

	return s.store(ctx, userID, models.PlatformLinkedin, userInfo.Name, credentials, token.Expiry)
}

// ConnectManual links platforms whose credentials the user pastes in
// directly: a WordPress application password, an Instagram business
// token, a Twitter token.
func (s *connectionService) ConnectManual(ctx context.Context, userID int64, req *transfer.ManualConnectRequest) (int64, error) {
	switch req.Platform {
	case models.PlatformWordPress, models.PlatformInstagram, models.PlatformTwitter:
	default:
		return 0, fmt.Errorf("platform %q does not support manual linking", req.Platform)
	}

	if len(req.Credentials) == 0 {
		return 0, errors.New("credentials cannot be empty")
	}

	return s.store(ctx, userID, req.Platform, req.AccountName, req.Credentials, time.Time{})
}

func (s *connectionService) store(ctx context.Context, userID int64, platform, accountName string, credentials map[string]string, expiresAt time.Time) (int64, error) {
	blob, err := json.Marshal(credentials)
	if err != nil {
		return 0, err
	}

	encrypted, err := utils.Encrypt(blob, []byte(s.cfg.SecretKey))
	if err != nil {
		return 0, err
	}

	conn := models.SocialConnection{
		UserID:      userID,
		Platform:    platform,
		AccountName: accountName,
		Credentials: encrypted,
	}
	if !expiresAt.IsZero() {
		conn.ExpiresAt = sql.NullTime{Time: expiresAt, Valid: true}
	}

	return s.cr.Create(ctx, nil, &conn)
}

func (s *connectionService) List(ctx context.Context, userID int64) ([]*models.SocialConnection, error) {
	connections, err := s.cr.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting social connections")
	}
	return connections, nil
}

func (s *connectionService) Remove(ctx context.Context, userID, connectionID int64) error {
	isValid, err := s.cr.CheckByUserID(ctx, connectionID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		return ErrConnectionNotFound
	}

	return s.cr.Remove(ctx, connectionID)
}

func getInto(client *http.Client, url string, out any) error {
	response, err := client.Get(url)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"Motorsize/internal/logging"
	"Motorsize/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	CookieName = "session_token"
	SessionTTL = 30 * 24 * time.Hour
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated user placed in ctx by AuthMiddleware.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok && id != 0
}

// WithUserID is used by tests and by callers that authenticate elsewhere.
func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

type Claims struct {
	UserID int    `json:"user_id"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}

type Authenv struct {
	JWTkey []byte
	Repo   repo.Repository
	// Secure marks the session cookie HTTPS-only.
	Secure bool
	Logger *zap.Logger
	now    func() time.Time
}

func (env *Authenv) clock() time.Time {
	if env.now != nil {
		return env.now()
	}
	return time.Now()
}

type IPRateLimiter struct {
	ips map[string]*rate.Limiter
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

type Loginrequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Registerrequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips: make(map[string]*rate.Limiter),
		r:   r,
		b:   b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.r, i.b)
		i.ips[ip] = limiter
	}
	return limiter
}

// LimitMiddleware applies one token bucket per client host.
func (i *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}

		if !i.getLimiter(ip).Allow() {
			http.Error(w, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (env *Authenv) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return env.JWTkey, nil
	}, jwt.WithTimeFunc(env.clock))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 || claims.Login == "" {
		return nil, errors.New("incomplete session claims")
	}
	return claims, nil
}

func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := env.parse(cookie.Value)
		if err != nil {
			logging.OrNop(env.Logger).Debug("session rejected", zap.Error(err))
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
	})
}

func (env *Authenv) issue(userID int, login string) (string, time.Time, error) {
	now := env.clock()
	expiration := now.Add(SessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Login:  login,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiration),
		},
	})
	s, err := token.SignedString(env.JWTkey)
	return s, expiration, err
}

func (env *Authenv) addCookie(w http.ResponseWriter, userID int, login string) error {
	tokenString, expiration, err := env.issue(userID, login)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   env.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (env *Authenv) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(env.Logger)

	var req Registerrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	req.Email = strings.TrimSpace(req.Email)
	if req.Login == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Login, email and password required", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, "Password too short", http.StatusBadRequest)
		return
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}
	id, err := env.Repo.CreateUser(r.Context(), req.Login, req.Email, hashedPassword)
	if err != nil {
		log.Info("create user failed", zap.String("login", req.Login), zap.Error(err))
		http.Error(w, "User already exists or DB error", http.StatusConflict)
		return
	}

	if err := env.addCookie(w, id, req.Login); err != nil {
		log.Error("sign session", zap.Error(err))
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte("Registration successful"))
}

func (env *Authenv) AuthHandler(w http.ResponseWriter, r *http.Request) {
	log := logging.OrNop(env.Logger)

	var req Loginrequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		http.Error(w, "Login and password required", http.StatusBadRequest)
		return
	}

	id, storedHash, err := env.Repo.GetBylogin(r.Context(), req.Login)
	if err != nil {
		log.Error("lookup user", zap.String("login", req.Login), zap.Error(err))
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if id == 0 || bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)) != nil {
		http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		return
	}
	if err := env.addCookie(w, id, req.Login); err != nil {
		log.Error("sign session", zap.Error(err))
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Authentication successful"))
}

func (env *Authenv) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   env.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

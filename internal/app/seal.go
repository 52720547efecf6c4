package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// Envelope carries one result to replicas together with the state hash the authority
// reached after applying it.
type Envelope struct {
	Seq       uint64 `json:"seq"`
	Result    Result `json:"result"`
	StateHash string `json:"state_hash"`
	Seal      string `json:"seal,omitempty"`
}

var ErrBadSeal = errors.New("envelope seal does not verify")

// Sealer signs envelopes with an HS256 token so replicas can tell results produced by the
// resolving party from anything else on the wire.
type Sealer struct {
	secret []byte
	issuer string
}

func NewSealer(secret, issuer string) *Sealer {
	return &Sealer{secret: []byte(secret), issuer: issuer}
}

// Seal stores a signed token binding seq, result digest and state hash into env.Seal.
func (s *Sealer) Seal(env *Envelope) error {
	if s == nil {
		return fmt.Errorf("sealer is nil")
	}
	if len(s.secret) == 0 {
		return fmt.Errorf("seal secret is required")
	}
	digest, err := resultDigest(env.Result)
	if err != nil {
		return err
	}
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"jti": uuid.NewString(),
		"seq": strconv.FormatUint(env.Seq, 10),
		"res": digest,
		"st":  env.StateHash,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return err
	}
	env.Seal = signed
	return nil
}

// Verify checks that env.Seal was produced by this sealer for exactly this envelope.
func (s *Sealer) Verify(env Envelope) error {
	token, err := jwt.Parse(env.Seal, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSeal, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrBadSeal
	}
	digest, err := resultDigest(env.Result)
	if err != nil {
		return err
	}
	want := map[string]string{
		"iss": s.issuer,
		"seq": strconv.FormatUint(env.Seq, 10),
		"res": digest,
		"st":  env.StateHash,
	}
	for name, value := range want {
		if got, _ := claims[name].(string); got != value {
			return fmt.Errorf("%w: claim %s mismatch", ErrBadSeal, name)
		}
	}
	jti, _ := claims["jti"].(string)
	if _, err := uuid.Parse(jti); err != nil {
		return fmt.Errorf("%w: jti: %v", ErrBadSeal, err)
	}
	return nil
}

func resultDigest(res Result) (string, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

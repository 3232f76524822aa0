package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"budget/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const workspaceKey = "workspaceID"

var jwtSecret []byte

// Claims 令牌内容：调用方所属工作区和操作人
type Claims struct {
	WorkspaceID uint   `json:"workspace_id"`
	Actor       string `json:"actor"`
	jwt.RegisteredClaims
}

// InitJWT 设置签名密钥
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// GenerateToken 为工作区签发令牌
func GenerateToken(workspaceID uint, actor string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("JWT 密钥未配置")
	}
	now := time.Now()
	claims := Claims{
		WorkspaceID: workspaceID,
		Actor:       actor,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "budget",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken 校验签名和有效期
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.WorkspaceID == 0 {
		return nil, errors.New("无效的令牌")
	}
	return claims, nil
}

// JWTAuth 校验 Bearer 令牌，把工作区写入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "缺少或格式错误的认证信息"})
			c.Abort()
			return
		}
		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "令牌无效或已过期"})
			c.Abort()
			return
		}
		c.Set(workspaceKey, claims.WorkspaceID)
		c.Set("actor", claims.Actor)
		c.Next()
	}
}

// GetCurrentWorkspaceID 当前请求的工作区，未认证时为 0
func GetCurrentWorkspaceID(c *gin.Context) uint {
	if v, ok := c.Get(workspaceKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

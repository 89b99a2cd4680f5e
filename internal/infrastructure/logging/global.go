package logging

import (
	"context"
)

// Funciones globales de conveniencia. Usan el logger global por defecto.

func Debug(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Debug(ctx, message, fields)
}

func Info(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Info(ctx, message, fields)
}

func Warn(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Warn(ctx, message, fields)
}

func Error(ctx context.Context, message string, fields Fields) {
	GetGlobalLogger().Error(ctx, message, fields)
}

func InfoWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLogger().InfoWithError(ctx, message, err, fields)
}

func WarnWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLogger().WarnWithError(ctx, message, err, fields)
}

func ErrorWithError(ctx context.Context, message string, err error, fields Fields) {
	GetGlobalLogger().ErrorWithError(ctx, message, err, fields)
}

// ExternalRequest registra una llamada completada a un proveedor externo
func ExternalRequest(ctx context.Context, service, endpoint string, durationMs float64, statusCode int) {
	GetGlobalLoggers().ExternalAPI.RequestCompleted(ctx, service, endpoint, statusCode, durationMs)
}

// CacheOperation registra un hit o miss de cache
func CacheOperation(ctx context.Context, operation, key string, hit bool) {
	cacheLogger := GetGlobalLoggers().Cache
	if hit {
		cacheLogger.Hit(ctx, key, operation)
	} else {
		cacheLogger.Miss(ctx, key, operation)
	}
}

func HTTP() HTTPLogger {
	return GetGlobalLoggers().HTTP
}

func ExternalAPI() ExternalAPILogger {
	return GetGlobalLoggers().ExternalAPI
}

func Cache() CacheLogger {
	return GetGlobalLoggers().Cache
}

func Market() MarketLogger {
	return GetGlobalLoggers().Market
}

func Favorites() FavoritesLogger {
	return GetGlobalLoggers().Favorites
}

func Security() SecurityLogger {
	return GetGlobalLoggers().Security
}

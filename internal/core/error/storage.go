package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// WrapMongo maps MongoDB errors to AppError with appropriate status codes.
func WrapMongo(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return New(err, http.StatusNotFound, NotFoundMessage)
	case mongo.IsDuplicateKeyError(err):
		return New(err, http.StatusConflict, "resource already exists")
	default:
		return New(err, http.StatusInternalServerError, DatabaseErrorMessage)
	}
}

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, NotFoundMessage)
	}

	return New(err, http.StatusInternalServerError, RedisErrorMessage)
}

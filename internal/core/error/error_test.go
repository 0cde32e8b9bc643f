package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestAppErrorChain(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", New(base, http.StatusBadGateway, "safe"))

	assert.ErrorIs(t, err, base)

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "safe", appErr.Message)
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Equal(t, "safe: boom", appErr.Error())
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
	assert.True(t, IsNotFound(NotFound("")))
	assert.Equal(t, NotFoundMessage, NotFound("").Message)
}

func TestWrapMongo(t *testing.T) {
	assert.Nil(t, WrapMongo(nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(WrapMongo(mongo.ErrNoDocuments)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(WrapMongo(errors.New("socket closed"))))

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "dup"}}}
	assert.Equal(t, http.StatusConflict, StatusOf(WrapMongo(dup)))

	// already classified errors pass through untouched
	nf := NotFound("product not found")
	assert.Same(t, nf, WrapMongo(nf))
}

func TestWrapRedis(t *testing.T) {
	assert.Nil(t, WrapRedis(nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(WrapRedis(redis.Nil)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(WrapRedis(errors.New("conn refused"))))
}

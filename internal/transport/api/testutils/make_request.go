package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
)

type RequestOptions struct {
	headers map[string]string
	body    io.Reader
}

type RequestArgs struct {
	Router http.Handler
	Method string
	URL    string
	Body   io.Reader
}

// MakeRequest выполняет запрос к роутеру через httptest и возвращает ответ. Тело ответа нужно закрыть.
func MakeRequest(args RequestArgs, opts ...func(*RequestOptions) error) (*http.Response, error) {
	options := RequestOptions{
		headers: make(map[string]string),
		body:    args.Body,
	}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return nil, err
		}
	}

	request := httptest.NewRequest(args.Method, args.URL, options.body)
	for k, v := range options.headers {
		request.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()

	args.Router.ServeHTTP(recorder, request)

	return recorder.Result(), nil
}

func WithHeader(name, value string) func(*RequestOptions) error {
	return func(o *RequestOptions) error {
		o.headers[name] = value
		return nil
	}
}

// WithBearer добавляет заголовок Authorization с jwt токеном. Пустой токен игнорируется.
func WithBearer(token string) func(*RequestOptions) error {
	return func(o *RequestOptions) error {
		if token != "" {
			o.headers["Authorization"] = "Bearer " + token
		}
		return nil
	}
}

// WithJSON сериализует v в тело запроса и выставляет Content-Type.
func WithJSON(v any) func(*RequestOptions) error {
	return func(o *RequestOptions) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %s", err.Error())
		}
		o.body = bytes.NewReader(b)
		o.headers["Content-Type"] = "application/json"
		return nil
	}
}

// DecodeJSON читает тело ответа в v и закрывает его.
func DecodeJSON(res *http.Response, v any) error {
	defer func() { _ = res.Body.Close() }()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response body: %s", err.Error())
	}
	return nil
}

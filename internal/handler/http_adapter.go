package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest is the JSON envelope the Functions host sends for an
// HTTP trigger when request forwarding is disabled.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse is the JSON envelope the host expects back.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// TriggerAdapter unwraps a host invocation into a plain request, serves it
// with next and wraps the recorded response.
func TriggerAdapter(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		newReq, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, triggerBody(reqData.Body, reqData.IsBase64Encoded))
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, v := range reqData.Headers {
			for _, val := range v {
				newReq.Header.Add(k, val)
			}
		}

		slog.Info("serving wrapped request", "method", newReq.Method, "path", newReq.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, newReq)

		result := recorder.Result()
		respBody, _ := io.ReadAll(result.Body)
		result.Body.Close()

		headers := make(map[string]string, len(result.Header))
		for k, v := range result.Header {
			headers[k] = strings.Join(v, ", ")
		}

		var resp HTTPTriggerResponse
		resp.Outputs.Res.StatusCode = result.StatusCode
		resp.Outputs.Res.Headers = headers
		resp.Outputs.Res.Body = string(respBody)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode HTTP trigger response", "error", err)
		}
	}
}

// triggerBody decodes the wrapped body. Some hosts send base64 without
// setting the flag, so decoding is attempted either way and the raw body
// is used when it fails.
func triggerBody(body string, isBase64 bool) io.Reader {
	if body == "" {
		return http.NoBody
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return bytes.NewReader(decoded)
	} else if isBase64 {
		slog.Warn("body flagged as base64 but could not be decoded", "error", err)
	}
	return strings.NewReader(body)
}

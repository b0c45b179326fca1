package router

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func registerSwaggerRoutes(r *mux.Router) {
	r.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	}).Methods(http.MethodGet)

	r.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	}).Methods(http.MethodGet)

	r.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	}).Methods(http.MethodGet)
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Ledger Replay Operations</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Ledger Replay Operations",
    "version": "1.0.0"
  },
  "paths": {
    "/health": {
      "get": {
        "summary": "Liveness probe",
        "responses": {
          "200": {"description": "Replay process is up"}
        }
      }
    },
    "/metrics": {
      "get": {
        "summary": "Prometheus metrics",
        "responses": {
          "200": {"description": "Text exposition format"}
        }
      }
    },
    "/accounts": {
      "get": {
        "summary": "Current balances of every account, ordered by client",
        "security": [{"BasicAuth": []}],
        "responses": {
          "200": {"description": "Accounts fetched"},
          "401": {"description": "Unauthorized"}
        }
      }
    },
    "/accounts/{client}": {
      "get": {
        "summary": "Current balance of one client",
        "security": [{"BasicAuth": []}],
        "parameters": [
          {
            "name": "client",
            "in": "path",
            "required": true,
            "schema": {"type": "integer", "minimum": 0, "maximum": 65535}
          }
        ],
        "responses": {
          "200": {"description": "Account fetched"},
          "400": {"description": "Invalid client id"},
          "401": {"description": "Unauthorized"},
          "404": {"description": "Account not found"}
        }
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {"type": "http", "scheme": "basic"}
    }
  }
}`

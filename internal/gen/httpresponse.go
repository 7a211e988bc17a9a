//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package gen

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONresponse - send the JSON; jsr should be a json-ready struct
func JSONresponse(c echo.Context, jsr any) error {
	// JSONPretty ends up prominent on the profiler; vanilla is the right choice unless debugging
	return c.JSON(http.StatusOK, jsr)
}

// JSONerror - the error as {"error": "..."} with the given status
func JSONerror(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

package jwwblog

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/joywithwealth/jwwblog/dom"
)

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// RenderDocument serializes a page document with the given status code.
func RenderDocument(c echo.Context, code int, doc *dom.Document) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return doc.Render(c.Response().Writer)
}

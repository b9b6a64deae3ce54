package session

import (
	"fmt"
	"strings"
)

// Backend endpoints consumed by the storefront.
const (
	RegisterPath      = "/api/usuarios/register/"
	LoginPath         = "/api/usuarios/login/"
	AdminLoginPath    = "/api/usuarios/admin-login/"
	VerifyCodePath    = "/api/usuarios/verify-code/"
	RefreshPath       = "/api/token/refresh/"
	ProductsPath      = "/api/productos/"
	CategoriesPath    = "/api/categorias/"
	AdminProductsPath = "/api/admin/productos/"
)

// ProductPath returns the detail path of a product.
func ProductPath(id int64) string { return fmt.Sprintf("%s%d/", ProductsPath, id) }

// RateProductPath returns the rating path of a product.
func RateProductPath(id int64) string { return fmt.Sprintf("%s%d/calificar/", ProductsPath, id) }

// CategoryPath returns the detail path of a category.
func CategoryPath(id int64) string { return fmt.Sprintf("%s%d/", CategoriesPath, id) }

// AdminProductPath returns the admin detail path of a product.
func AdminProductPath(id int64) string { return fmt.Sprintf("%s%d/", AdminProductsPath, id) }

// RouteClass tells whether a backend path takes part in bearer authentication.
type RouteClass int

const (
	// Protected paths get the access token attached and trigger a refresh on 401.
	Protected RouteClass = iota
	// Public paths never carry credentials and never trigger a refresh.
	Public
)

func (c RouteClass) String() string {
	if c == Public {
		return "public"
	}
	return "protected"
}

// publicRoutes is the single source of truth for route classification.
// A "{id}" segment matches exactly one non-empty path segment; everything else
// must match literally, trailing slash included.
var publicRoutes = []string{
	RegisterPath,
	LoginPath,
	AdminLoginPath,
	VerifyCodePath,
	ProductsPath,
	ProductsPath + "{id}/",
	CategoriesPath,
	CategoriesPath + "{id}/",
}

// Classify returns the class of path. The query string, if any, is ignored.
func Classify(path string) RouteClass {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for _, pattern := range publicRoutes {
		if matchRoute(pattern, path) {
			return Public
		}
	}
	return Protected
}

func matchRoute(pattern, path string) bool {
	ps := strings.Split(pattern, "/")
	xs := strings.Split(path, "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if ps[i] == "{id}" {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}

package main

import (
	"net/http"

	"gitlab.com/pala-software/livelist/pkg/auth"
	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/migrator"
	"gitlab.com/pala-software/livelist/pkg/oauth"
	"gitlab.com/pala-software/livelist/pkg/otel"
	"gitlab.com/pala-software/livelist/pkg/param"
	"gitlab.com/pala-software/livelist/pkg/results"
	"gitlab.com/pala-software/livelist/pkg/rows"
	"gitlab.com/pala-software/livelist/pkg/viewsse"
	"go.uber.org/dig"
)

// Features in invocation order. The otel feature must be invoked last so
// that its hooks cover every operation registered by the other features.
func newFeatures() []livelist.Feature {
	return []livelist.Feature{
		livelist.CoreFromEnv(),
		migrator.MigratorFromEnv(),
		rows.RowsFromEnv(),
		results.WatchFromEnv(),
		viewsse.ViewsFromEnv(),
		auth.AuthenticationFromEnv(),
		param.ParamFromEnv(),
		oauth.OAuthFromEnv(),
		otel.OTelFromEnv(),
	}
}

func container(features []livelist.Feature) (c *dig.Container, err error) {
	c = dig.New()

	err = c.Provide(http.NewServeMux)
	if err != nil {
		return
	}

	err = c.Provide(databaseFromEnv)
	if err != nil {
		return
	}

	for _, feature := range features {
		err = c.Provide(feature.Provider())
		if err != nil {
			return
		}
	}

	return
}

func invokeFeatures(c *dig.Container, features []livelist.Feature) (err error) {
	for _, feature := range features {
		err = c.Invoke(feature.Invoker())
		if err != nil {
			return
		}
	}

	return
}

func setup() (c *dig.Container, err error) {
	features := newFeatures()

	c, err = container(features)
	if err != nil {
		return
	}

	err = invokeFeatures(c, features)
	if err != nil {
		return
	}

	return
}

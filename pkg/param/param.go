package param

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/url"
	"strings"

	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/migrator"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ParamMap carries request parameters of the form param[key]=value into
// the transaction. Row level security policies and views read them back
// with livelist.param(key).
type ParamMap map[string]string

func (pmap ParamMap) Details() map[string]string {
	details := map[string]string{}
	for key, value := range pmap {
		details["param["+key+"]"] = value
	}
	return details
}

// ParseParams collects parameters from query parameters of the form
// param[key]=value. For repeated parameters the first value wins.
func ParseParams(query url.Values) ParamMap {
	pmap := ParamMap{}
	for key, values := range query {
		var found bool

		key, found = strings.CutPrefix(key, "param[")
		if !found {
			continue
		}

		key, found = strings.CutSuffix(key, "]")
		if !found {
			continue
		}

		if len(values) == 0 {
			continue
		}

		pmap[key] = values[0]
	}
	return pmap
}

type Param struct{}

func ParamFromEnv() *Param {
	feature := &Param{}
	return feature
}

func (feature *Param) Provider() any {
	return func() (self *Param) {
		self = feature
		return
	}
}

func (feature *Param) Invoker() any {
	return func(
		mig *migrator.Migrator,
		begin *livelist.BeginOperation,
	) (err error) {
		err = feature.RegisterMigrations(mig)
		if err != nil {
			return
		}

		err = feature.RegisterHooks(begin)
		if err != nil {
			return
		}

		return
	}
}

// Set adds one parameter to the operation, creating the parameter map
// when it is not present yet.
func (feature *Param) Set(ctx livelist.OperationContext, key string, value string) {
	pmap, ok := ctx.Variables["params"].(ParamMap)
	if ok {
		pmap[key] = value
	} else {
		ctx.Variables["params"] = ParamMap{
			key: value,
		}
	}
}

func (*Param) RegisterMigrations(mig *migrator.Migrator) (err error) {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return
	}

	mig.Targets.Register(migrator.MigrationTarget{
		Name:      "param",
		Directory: dir,
	})
	return
}

func (feature *Param) RegisterHooks(
	begin *livelist.BeginOperation,
) (err error) {
	begin.Before().Register(func(
		initCtx livelist.OperationContext,
		initParams livelist.EmptyOperationParams,
	) (
		ctx livelist.OperationContext,
		params livelist.EmptyOperationParams,
		err error,
	) {
		ctx = initCtx
		params = initParams

		if ctx.Request != nil {
			for key, value := range ParseParams(ctx.Request.URL.Query()) {
				feature.Set(ctx, key, value)
			}
		}

		return
	})

	begin.After().Register(func(
		_ livelist.OperationContext,
		_ livelist.EmptyOperationParams,
		initCtx livelist.OperationContext,
	) (ctx livelist.OperationContext, err error) {
		ctx = initCtx

		pmap, ok := ctx.Variables["params"].(ParamMap)
		if !ok {
			return
		}

		encodedParams, err := json.Marshal(pmap)
		if err != nil {
			return
		}

		_, err = ctx.Tx.Exec(
			ctx,
			"SELECT livelist.set_params($1)",
			encodedParams,
		)
		if err != nil {
			return
		}

		return
	})

	return
}

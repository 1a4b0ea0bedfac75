package graph

import (
	"errors"
	"fmt"

	"github.com/MarcVCE/TrabajoOpcional/internal/auth"
	"github.com/MarcVCE/TrabajoOpcional/internal/chat"
	"github.com/MarcVCE/TrabajoOpcional/internal/registry"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog/log"
)

// Resultado 是所有变更操作的统一返回信封。
type Resultado struct {
	Estado  string `json:"estado"`
	Mensaje string `json:"mensaje"`
}

// Sala 是对外输出的房间数据。
type Sala struct {
	Nombre   string   `json:"nombre"`
	Mensajes []string `json:"mensajes"`
	Usuarios []string `json:"usuarios"`
}

const (
	estadoSuccess = "SUCCESS"
	estadoError   = "ERROR"
)

func exito(mensaje string) Resultado {
	return Resultado{Estado: estadoSuccess, Mensaje: mensaje}
}

func fallo(mensaje string) Resultado {
	return Resultado{Estado: estadoError, Mensaje: mensaje}
}

func salaFrom(v registry.RoomView) Sala {
	return Sala{Nombre: v.Name, Mensajes: v.Messages, Usuarios: v.Members}
}

var resultadoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Resultado",
	Fields: graphql.Fields{
		"estado":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"mensaje": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var salaType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Sala",
	Fields: graphql.Fields{
		"nombre":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"mensajes": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.String))},
		"usuarios": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
	},
})

func credencialesArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"email":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"contrasena": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
}

// New 构建完整的 GraphQL schema，解析器全部委托给 ChatService。
// join 订阅经由 WebSocket 端点提供，不在这里注册。
func New(svc *chat.Service) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getChats": &graphql.Field{
				Type: graphql.NewList(salaType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := auth.IdentityFrom(p.Context)
					views, err := svc.ListRooms(p.Context, id)
					if err != nil {
						if errors.Is(err, chat.ErrUnauthorized) {
							return nil, errors.New("No autorizado")
						}
						log.Error().Err(err).Msg("getChats")
						return nil, err
					}
					salas := make([]Sala, 0, len(views))
					for _, v := range views {
						salas = append(salas, salaFrom(v))
					}
					return salas, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"signIn": &graphql.Field{
				Type: graphql.NewNonNull(resultadoType),
				Args: credencialesArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email := p.Args["email"].(string)
					contrasena := p.Args["contrasena"].(string)
					if err := svc.SignIn(p.Context, email, contrasena); err != nil {
						if errors.Is(err, chat.ErrAlreadyExists) {
							return fallo("Usuario ya existe"), nil
						}
						log.Error().Err(err).Str("email", email).Msg("signIn")
						return nil, err
					}
					return exito("Usuario agregado"), nil
				},
			},
			"logIn": &graphql.Field{
				Type: graphql.NewNonNull(resultadoType),
				Args: credencialesArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email := p.Args["email"].(string)
					contrasena := p.Args["contrasena"].(string)
					token, err := svc.LogIn(p.Context, email, contrasena)
					if err != nil {
						if errors.Is(err, chat.ErrInvalidCredentials) {
							return fallo("Login imposible de realizar"), nil
						}
						log.Error().Err(err).Str("email", email).Msg("logIn")
						return nil, err
					}
					// 成功时 mensaje 字段携带签发的令牌
					return exito(token), nil
				},
			},
			"logOut": &graphql.Field{
				Type: graphql.NewNonNull(resultadoType),
				Args: credencialesArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					email := p.Args["email"].(string)
					contrasena := p.Args["contrasena"].(string)
					if err := svc.LogOut(p.Context, email, contrasena); err != nil {
						if errors.Is(err, chat.ErrInvalidCredentials) {
							return fallo("Logout imposible de realizar"), nil
						}
						log.Error().Err(err).Str("email", email).Msg("logOut")
						return nil, err
					}
					return exito("Logout realizado con exito"), nil
				},
			},
			"quit": &graphql.Field{
				Type: graphql.NewNonNull(resultadoType),
				Args: graphql.FieldConfigArgument{
					"nombreSala": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nombreSala := p.Args["nombreSala"].(string)
					id := auth.IdentityFrom(p.Context)
					if err := svc.Quit(p.Context, id, nombreSala); err != nil {
						switch {
						case errors.Is(err, chat.ErrUnauthorized):
							return fallo("No autorizado"), nil
						case errors.Is(err, registry.ErrRoomNotFound):
							return fallo("Sala no existe"), nil
						case errors.Is(err, registry.ErrNotAMember):
							return fallo("Usuario no encontrado"), nil
						}
						log.Error().Err(err).Str("sala", nombreSala).Msg("quit")
						return nil, err
					}
					return exito("Usuario eliminado"), nil
				},
			},
			"sendMessage": &graphql.Field{
				Type: graphql.NewNonNull(resultadoType),
				Args: graphql.FieldConfigArgument{
					"nombreSala": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"mensaje":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nombreSala := p.Args["nombreSala"].(string)
					mensaje := p.Args["mensaje"].(string)
					id := auth.IdentityFrom(p.Context)
					if err := svc.SendMessage(p.Context, id, nombreSala, mensaje); err != nil {
						switch {
						case errors.Is(err, chat.ErrUnauthorized):
							return fallo("No autorizado"), nil
						case errors.Is(err, registry.ErrRoomNotFound):
							return fallo("No se ha podido enviar el mensaje"), nil
						}
						log.Error().Err(err).Str("sala", nombreSala).Msg("sendMessage")
						return nil, err
					}
					return exito(fmt.Sprintf("Mensaje: %s , introducido", mensaje)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
}

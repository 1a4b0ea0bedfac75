package chat

import (
	"context"
	"errors"

	"github.com/MarcVCE/TrabajoOpcional/internal/auth"
	"github.com/MarcVCE/TrabajoOpcional/internal/bus"
	"github.com/MarcVCE/TrabajoOpcional/internal/directory"
	"github.com/MarcVCE/TrabajoOpcional/internal/metrics"
	"github.com/MarcVCE/TrabajoOpcional/internal/registry"
)

// Service 编排目录、房间注册表与事件总线，实现全部聊天操作。
// 自身不持有状态，授权检查总是在任何变更之前完成。
type Service struct {
	dir   directory.UserDirectory
	rooms *registry.Registry
	bus   *bus.Bus
}

func NewService(dir directory.UserDirectory, rooms *registry.Registry, b *bus.Bus) *Service {
	return &Service{dir: dir, rooms: rooms, bus: b}
}

func requireIdentity(id *auth.Identity) error {
	if id == nil {
		return ErrUnauthorized
	}
	return nil
}

// ListRooms 返回所有房间的快照，匿名调用被拒绝。
func (s *Service) ListRooms(ctx context.Context, id *auth.Identity) ([]registry.RoomView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.rooms.List(), nil
}

// SignIn 注册新用户，邮箱已存在返回 ErrAlreadyExists。
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	if _, err := s.dir.Create(ctx, email, password); err != nil {
		if errors.Is(err, directory.ErrEmailTaken) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// LogIn 校验凭据并签发新令牌，旧令牌随之作废。
func (s *Service) LogIn(ctx context.Context, email, password string) (string, error) {
	token := auth.NewToken()
	if err := s.dir.SetToken(ctx, email, password, token); err != nil {
		if errors.Is(err, directory.ErrBadCredentials) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	return token, nil
}

// LogOut 校验凭据并清除令牌。
func (s *Service) LogOut(ctx context.Context, email, password string) error {
	if err := s.dir.SetToken(ctx, email, password, ""); err != nil {
		if errors.Is(err, directory.ErrBadCredentials) {
			return ErrInvalidCredentials
		}
		return err
	}
	return nil
}

// Join 订阅房间的消息流。房间不存在时静默创建，订阅者成为首个成员；
// 这与 SendMessage 对未知房间直接失败是有意保留的不对称。
func (s *Service) Join(ctx context.Context, id *auth.Identity, roomName string) (*bus.Subscription, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	s.rooms.Ensure(roomName, id.ID)
	return s.bus.Subscribe(roomName, id.Email), nil
}

// Quit 将调用者移出房间。断开订阅不会触发退出，成员关系只在这里解除。
func (s *Service) Quit(ctx context.Context, id *auth.Identity, roomName string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	return s.rooms.RemoveMember(roomName, id.ID)
}

// SendMessage 向已存在的房间追加消息并广播给当前订阅者。
func (s *Service) SendMessage(ctx context.Context, id *auth.Identity, roomName, body string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.rooms.AppendMessage(roomName, body); err != nil {
		return err
	}
	metrics.MessagesTotal.Inc()
	s.bus.Publish(bus.Event{Room: roomName, Body: body, Email: id.Email})
	return nil
}

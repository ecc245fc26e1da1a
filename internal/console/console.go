// Package console is an interactive line-oriented front end for the
// marketplace. It owns the session: who is logged in, and which commands
// their role allows.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/service"
	"marketplace/backend/internal/verification"
)

type handler func(ctx context.Context, args []string) error

// userError is shown to the user and does not end the session.
type userError string

func (e userError) Error() string {
	return string(e)
}

const (
	errLoginRequired   userError = "请先登录"
	errNotNumeric      userError = "图片数量、价格和库存需为数字"
	errProductNotFound userError = "商品不存在"
)

type Console struct {
	svc      *service.Service
	codes    *verification.Service
	scanner  *bufio.Scanner
	out      io.Writer
	log      *logrus.Entry
	user     *domain.User
	commands map[string]handler
}

func New(svc *service.Service, codes *verification.Service, in io.Reader, out io.Writer, logger *logrus.Entry) *Console {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Console{
		svc:     svc,
		codes:   codes,
		scanner: bufio.NewScanner(in),
		out:     out,
		log:     logger.WithField("component", "console"),
	}
	c.commands = map[string]handler{
		"help":     c.help,
		"code":     c.sendCode,
		"register": c.register,
		"login":    c.login,
		"logout":   c.logout,
		"whoami":   c.whoami,
		"list":     c.list,
		"search":   c.search,
		"show":     c.show,
		"publish":  c.publish,
		"order":    c.order,
		"complain": c.complain,
		"offshelf": c.offShelf,
		"admin":    c.admin,
	}
	return c
}

// Run reads commands until quit, end of input, or a failure that is not the
// user's fault, such as a store that can no longer be written.
func (c *Console) Run(ctx context.Context) error {
	c.println("欢迎使用二手商城，输入 help 查看命令")
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, ok := c.ask(c.prompt())
		if !ok {
			return c.scanner.Err()
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		if name == "quit" || name == "exit" {
			c.println("再见")
			return nil
		}
		run, found := c.commands[name]
		if !found {
			c.printf("未知命令 %q，输入 help 查看命令\n", fields[0])
			continue
		}
		if err := run(ctx, fields[1:]); err != nil {
			if msg, ok := userMessage(err); ok {
				c.printf("错误：%s\n", msg)
				continue
			}
			c.log.WithError(err).WithField("command", name).Error("command failed")
			return fmt.Errorf("%s: %w", name, err)
		}
	}
}

func userMessage(err error) (string, bool) {
	var ue userError
	if errors.As(err, &ue) {
		return ue.Error(), true
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	if errors.Is(err, verification.ErrPhoneRequired) {
		return err.Error(), true
	}
	return "", false
}

func (c *Console) prompt() string {
	if c.user == nil {
		return "> "
	}
	return fmt.Sprintf("[%s]> ", c.user.Username)
}

// ask prints label and reads one line. It reports false at end of input.
func (c *Console) ask(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) requireUser() (*domain.User, error) {
	if c.user == nil {
		return nil, errLoginRequired
	}
	return c.user, nil
}

func (c *Console) help(_ context.Context, _ []string) error {
	c.println(`命令：
  code <手机号>                              获取验证码
  register <用户名> <手机号> <验证码> [买家|卖家]  注册
  login <手机号> <验证码>                     登录
  logout | whoami                            退出登录 / 我的
  list                                       在售商品
  search [关键词] [category=分类] [condition=全新|95新及以上] [price=0-500元|500-1000元|1000元以上]
  show <商品编号>                             商品详情
  publish                                    发布商品（卖家/管理员）
  order <商品编号> [数量]                      立即下单
  complain product|order <编号>               投诉
  offshelf <商品编号>                          下架自己的商品
  admin users|products|orders|complaints     后台列表（管理员）
  admin ban <用户编号> [原因]                   封禁用户
  admin takedown <商品编号> [原因]              违规下架
  admin handle <投诉编号> <处理中|已解决|已驳回|待处理> [结果]
  quit                                       退出`)
	return nil
}

// tokengen 使用服务端配置签发 Access Token，供本地联调与运维排障。
// 正式环境的 Token 由身份服务签发。
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/config"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/jwt"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	userID := flag.String("user", "", "用户 ID")
	role := flag.String("role", "teacher", "角色: admin | teacher | viewer")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -user")
		os.Exit(2)
	}
	switch *role {
	case "admin", "teacher", "viewer":
	default:
		fmt.Fprintf(os.Stderr, "未知角色: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*userID, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发 Token 失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

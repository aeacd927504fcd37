// Package utils 地址解析与格式化工具
//
// 配置文件与命令行中的主体地址支持两种写法：
//   - 0x 前缀十六进制（40 个十六进制字符）
//   - Base58Check（版本字节 0x1C + 20 字节地址 + 4 字节校验和）
package utils

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/common"
)

// AddressVersion Base58Check 地址版本字节
const AddressVersion = byte(0x1C)

// AddressBytesToBase58 将 20 字节地址转换为 Base58Check 编码
func AddressBytesToBase58(addressBytes []byte) (string, error) {
	if len(addressBytes) != common.AddressLength {
		return "", fmt.Errorf("invalid address length: expected %d bytes, got %d", common.AddressLength, len(addressBytes))
	}
	return base58.CheckEncode(addressBytes, AddressVersion), nil
}

// AddressBase58ToBytes 将 Base58Check 编码地址转换为 20 字节地址
func AddressBase58ToBytes(base58Addr string) ([]byte, error) {
	payload, version, err := base58.CheckDecode(base58Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 address: %w", err)
	}
	if version != AddressVersion {
		return nil, fmt.Errorf("invalid address version: expected 0x%02x, got 0x%02x", AddressVersion, version)
	}
	if len(payload) != common.AddressLength {
		return nil, fmt.Errorf("invalid address length: expected %d bytes, got %d", common.AddressLength, len(payload))
	}
	return payload, nil
}

// ParseAddress 解析十六进制或 Base58Check 地址
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, fmt.Errorf("empty address")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if !common.IsHexAddress(s) {
			return common.Address{}, fmt.Errorf("invalid hex address: %s", s)
		}
		return common.HexToAddress(s), nil
	}

	b, err := AddressBase58ToBytes(s)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(b), nil
}

// ParseAddresses 批量解析地址，出错时指明位置
func ParseAddresses(list []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(list))
	for i, s := range list {
		addr, err := ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("address[%d]: %w", i, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

// FormatBase58 地址的 Base58Check 形式
func FormatBase58(addr common.Address) string {
	return base58.CheckEncode(addr.Bytes(), AddressVersion)
}

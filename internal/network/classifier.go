package network

import (
	"net"
	"strconv"
	"strings"
)

// ZoneType тип сетевой зоны
type ZoneType string

// Сетевые зоны в порядке убывания специфичности
const (
	ZoneTailscale ZoneType = "tailscale"
	ZoneWireguard ZoneType = "wireguard"
	ZoneLocal     ZoneType = "local"
	ZoneLocalhost ZoneType = "localhost"
	ZonePublic    ZoneType = "public"
)

// Zone описывает сетевую зону с признаком доверия и данными для отображения
type Zone struct {
	Type    ZoneType `json:"type"`
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	Trusted bool     `json:"trusted"`
}

var zones = map[ZoneType]Zone{
	ZoneTailscale: {Type: ZoneTailscale, Name: "Tailscale VPN", Color: "#4f46e5", Trusted: true},
	ZoneWireguard: {Type: ZoneWireguard, Name: "WireGuard VPN", Color: "#88171a", Trusted: true},
	ZoneLocal:     {Type: ZoneLocal, Name: "Local Network", Color: "#16a34a", Trusted: true},
	ZoneLocalhost: {Type: ZoneLocalhost, Name: "Localhost", Color: "#64748b", Trusted: true},
	ZonePublic:    {Type: ZonePublic, Name: "Public Internet", Color: "#dc2626", Trusted: false},
}

// DefaultWireguardCIDR подсеть WireGuard по умолчанию; реальные установки
// задают свою через конфигурацию.
const DefaultWireguardCIDR = "10.8.0.0/24"

const tailscaleCIDR = "100.64.0.0/10"

var localCIDRs = []string{"192.168.0.0/16", "10.0.0.0/8", "172.16.0.0/12"}

// Classifier классифицирует IP-адреса по сетевым зонам.
// Правила фиксированы, кроме подсети WireGuard.
type Classifier struct {
	wireguardCIDR string
}

// NewClassifier создает новый классификатор сетевых зон
func NewClassifier(wireguardCIDR string) *Classifier {
	if wireguardCIDR == "" {
		wireguardCIDR = DefaultWireguardCIDR
	}
	return &Classifier{wireguardCIDR: wireguardCIDR}
}

// Classify определяет сетевую зону IP-адреса. Детерминированная чистая
// функция: первое совпадение выигрывает, нераспознанный адрес получает public.
//
// Диапазоны IPv6 не проверяются: любой IPv6 кроме ::1 попадает в public.
// Ограничение сохранено сознательно, развертывания FlexPBX работают по IPv4.
func (c *Classifier) Classify(ip string) Zone {
	switch {
	case IPInRange(ip, tailscaleCIDR):
		return zones[ZoneTailscale]
	case IPInRange(ip, c.wireguardCIDR):
		return zones[ZoneWireguard]
	case ipInAnyRange(ip, localCIDRs):
		return zones[ZoneLocal]
	case ip == "127.0.0.1" || ip == "::1":
		return zones[ZoneLocalhost]
	default:
		return zones[ZonePublic]
	}
}

// ZoneByType возвращает зону по ее типу (public для неизвестного типа)
func ZoneByType(t ZoneType) Zone {
	if z, ok := zones[t]; ok {
		return z
	}
	return zones[ZonePublic]
}

func ipInAnyRange(ip string, cidrs []string) bool {
	for _, cidr := range cidrs {
		if IPInRange(ip, cidr) {
			return true
		}
	}
	return false
}

// IPInRange проверяет принадлежность IPv4-адреса подсети через 32-битную
// целочисленную арифметику: ip&mask == subnet&mask, mask = 0xFFFFFFFF<<(32-p).
// Для /0 маска равна нулю и совпадает любой адрес, для /32 только точный.
// Любая ошибка разбора дает false, не ошибку.
func IPInRange(ip, cidr string) bool {
	subnetStr, prefixStr, ok := strings.Cut(cidr, "/")
	if !ok {
		return false
	}

	prefix, err := strconv.Atoi(prefixStr)
	if err != nil || prefix < 0 || prefix > 32 {
		return false
	}

	ipVal, ok := ipv4ToUint32(ip)
	if !ok {
		return false
	}
	subnetVal, ok := ipv4ToUint32(subnetStr)
	if !ok {
		return false
	}

	// Сдвиг на 32 для /0 дает нулевую маску
	mask := uint32(0xFFFFFFFF) << (32 - uint(prefix))

	return ipVal&mask == subnetVal&mask
}

func ipv4ToUint32(s string) (uint32, bool) {
	ip := net.ParseIP(s)
	if ip == nil {
		return 0, false
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), true
}
